package page

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jallerangel/portfolio/internal/content"
	"github.com/jallerangel/portfolio/internal/draw"
)

const (
	techCardWidth = 16 // Inside the border
	techCardGap   = 2
	maxTechCols   = 5
)

// sectionHeader renders a section title over its subtitle, centred in width.
func sectionHeader(st styles, title, subtitle string, width int) []row {
	rows := []row{
		{textSegment(st.gradientText(title, nameFrom, nameTo, true), width)},
		nil,
	}
	for _, l := range draw.Wrap(subtitle, contentWidth(width)) {
		rows = append(rows, row{textSegment(st.muted.Render(l), width)})
	}
	return rows
}

// techColumns returns how many technology cards fit side by side.
func techColumns(width int) int {
	n := (width + techCardGap) / (techCardWidth + 2 + techCardGap)
	return max(1, min(n, maxTechCols))
}

// layoutStack lays out the technology cards as a centred grid.
func (d *document) layoutStack(st styles) {
	b := d.beginSection()
	b.blank(2)
	b.add(sectionHeader(st, content.StackTitle, content.StackSubtitle, d.width)...)
	b.blank(2)

	cols := techColumns(d.width)
	gap := st.base.Render("  ")
	var gridRows []string
	for i := 0; i < len(content.Technologies); i += cols {
		var cards []string
		for j, tech := range content.Technologies[i:min(i+cols, len(content.Technologies))] {
			if j > 0 {
				cards = append(cards, gap)
			}
			cards = append(cards, techCard(st, tech))
		}
		gridRows = append(gridRows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Center, gridRows...)
	b.add(centered(grid, d.width)...)
	b.end(sectionNames[SectionStack], false)
}

// techCard renders one technology in its brand colour.
func techCard(st styles, tech content.Technology) string {
	accent := lipgloss.Color(tech.Accent().Hex())
	return st.card.
		BorderForeground(accent).
		Foreground(accent).
		Bold(true).
		Width(techCardWidth).
		Align(lipgloss.Center).
		Render(draw.Truncate(tech.Name, techCardWidth))
}
