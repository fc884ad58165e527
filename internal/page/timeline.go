package page

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jallerangel/portfolio/internal/content"
	"github.com/jallerangel/portfolio/internal/draw"
)

// Below this width the timeline collapses to a single column.
const twoColumnTimeline = 80

const (
	spineGlyph = "│"
	nodeGlyph  = "●"
	endGlyph   = "◆"
)

// layoutTimeline lays out the milestones along a vertical spine, cards
// alternating left and right. The section is drawn over the rain.
func (d *document) layoutTimeline(st styles) {
	b := d.beginSection()
	b.blank(2)
	b.add(sectionHeader(st, content.TimelineTitle, content.TimelineSubtitle, d.width)...)
	b.blank(2)

	spineCol := d.width / 2
	cardWidth := min(d.width/2-4, 44)
	if d.width < twoColumnTimeline {
		spineCol = 2
		cardWidth = d.width - 6
	}
	spine := st.spine.Render(spineGlyph)
	node := st.spine.Render(nodeGlyph)

	for i, m := range content.Timeline {
		card := milestoneCard(st, m, cardWidth)
		col := spineCol + 3
		if d.width >= twoColumnTimeline && i%2 == 0 {
			col = spineCol - 2 - lipgloss.Width(card)
		}
		for j, r := range blockRows(card, col) {
			mark := spine
			if j == 1 {
				mark = node
			}
			b.add(append(row{{col: spineCol, text: mark, width: 1}}, r...))
		}
		b.add(row{{col: spineCol, text: spine, width: 1}})
	}
	b.add(row{{col: spineCol, text: st.year.Render(endGlyph), width: 1}})
	b.end(sectionNames[SectionTimeline], true)
}

// milestoneCard renders one milestone: year, title, description and tags.
func milestoneCard(st styles, m content.Milestone, width int) string {
	inner := max(10, width-4)
	lines := []string{
		st.year.Render(m.Year),
		st.text.Bold(true).Render(draw.Truncate(m.Title, inner)),
		"",
	}
	for _, l := range draw.Wrap(m.Description, inner) {
		lines = append(lines, st.muted.Render(l))
	}
	lines = append(lines, "")
	lines = append(lines, tagLines(st, m.Tags, inner)...)

	return st.card.
		Padding(0, 1).
		Width(inner + 2).
		Render(strings.Join(lines, "\n"))
}

// tagLines flows tags as badges into lines of at most width columns.
func tagLines(st styles, tags []string, width int) []string {
	var lines []string
	var line []string
	used := 0
	sep := st.base.Render(" ")
	for _, tag := range tags {
		badge := st.badge.Render(draw.Truncate(tag, max(1, width-2)))
		w := lipgloss.Width(badge)
		if used > 0 && used+1+w > width {
			lines = append(lines, strings.Join(line, sep))
			line, used = nil, 0
		}
		if used > 0 {
			used++
		}
		line = append(line, badge)
		used += w
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, sep))
	}
	return lines
}
