package page

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jallerangel/portfolio/internal/content"
	"github.com/jallerangel/portfolio/internal/draw"
)

const projectCardWidth = 34

// layoutProjects lays out the project cards, or the empty state while there
// are none, and reserves the footer row at the bottom of the page.
func (d *document) layoutProjects(st styles) {
	b := d.beginSection()
	b.blank(2)
	b.add(sectionHeader(st, content.ProjectsTitle, content.ProjectsSubtitle, d.width)...)
	b.blank(2)

	if len(content.Projects) == 0 {
		empty := st.card.
			Padding(1, 3).
			Width(min(lipgloss.Width(content.ProjectsEmpty)+6, contentWidth(d.width))).
			Foreground(colorMuted).
			Render(content.ProjectsEmpty)
		b.add(centered(empty, d.width)...)
	} else {
		cols := max(1, min(2, (d.width+2)/(projectCardWidth+4)))
		gap := st.base.Render("  ")
		var gridRows []string
		for i := 0; i < len(content.Projects); i += cols {
			var cards []string
			for j, p := range content.Projects[i:min(i+cols, len(content.Projects))] {
				if j > 0 {
					cards = append(cards, gap)
				}
				cards = append(cards, projectCard(st, p, min(projectCardWidth, d.width-4)))
			}
			gridRows = append(gridRows, lipgloss.JoinHorizontal(lipgloss.Top, cards...), "")
		}
		b.add(centered(lipgloss.JoinVertical(lipgloss.Center, gridRows...), d.width)...)
	}

	if n := b.row() - b.start; n < d.height-1 {
		b.blank(d.height - 1 - n)
	} else {
		b.blank(1)
	}
	d.footerRow = b.row()
	b.blank(1)
	b.end(sectionNames[SectionProjects], false)
}

// projectCard renders one project with its tags and link.
func projectCard(st styles, p content.Project, width int) string {
	inner := max(10, width-4)
	lines := []string{st.text.Bold(true).Render(draw.Truncate(p.Title, inner)), ""}
	for _, l := range draw.Wrap(p.Description, inner) {
		lines = append(lines, st.muted.Render(l))
	}
	if len(p.Tags) > 0 {
		lines = append(lines, "")
		lines = append(lines, tagLines(st, p.Tags, inner)...)
	}
	if p.URL != "" {
		lines = append(lines, "", draw.Hyperlink(p.URL, st.link.Render(draw.Truncate(p.URL, inner))))
	}
	return st.card.Padding(0, 1).Width(inner + 2).Render(strings.Join(lines, "\n"))
}

// footerText is the page footer: author, total visits and live sessions.
// A negative visits count means the visit log is unavailable.
func footerText(visits int64, online int) string {
	parts := []string{"© " + content.Profile.Name}
	if visits >= 0 {
		parts = append(parts, humanize.Comma(visits)+" "+plural(visits, "visit"))
	}
	if online > 0 {
		parts = append(parts, fmt.Sprintf("%d online", online))
	}
	return strings.Join(parts, " · ")
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
