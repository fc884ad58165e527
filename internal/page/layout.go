package page

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jallerangel/portfolio/internal/draw"
)

// segment is a styled run of text at a fixed column of a page row.
type segment struct {
	col   int // 1-based render-area column
	text  string
	width int
}

// row is one page row; its segments are written left to right and later
// segments overwrite earlier ones.
type row []segment

// Section indices, in page order.
const (
	SectionCover = iota
	SectionStack
	SectionTimeline
	SectionProjects
	sectionCount
)

var sectionNames = [sectionCount]string{"Home", "Stack", "Journey", "Projects"}

// section is a vertical slice of the page.
type section struct {
	name  string
	start int  // First page row
	rows  int  // Never less than the viewport height
	rain  bool // Rows are drawn over the rain field
}

func (s section) end() int { return s.start + s.rows }

// box is a rectangle of page rows and columns, inclusive-exclusive.
type box struct {
	top, bottom int
	left, right int
}

func (b box) contains(r, col int) bool {
	return r >= b.top && r < b.bottom && col >= b.left && col < b.right
}

// document is the laid out page for one render size. Dynamic parts (the
// rotating title, particles, scroll hint and footer) are not part of the
// rows; the anchors below say where they go.
type document struct {
	width    int // Render columns
	height   int // Viewport rows (render rows minus the status bar)
	rows     []row
	sections []section

	coverCard box // Particles stay outside it
	titleRow  int // Row of the rotating title, centred in width
	hintRow   int // Scroll hint; bounces between hintRow and hintRow+1
	footerRow int
}

// maxScroll is the largest valid scroll offset.
func (d *document) maxScroll() int {
	return max(0, len(d.rows)-d.height)
}

// clampScroll limits scroll to [0, maxScroll].
func (d *document) clampScroll(scroll int) int {
	return max(0, min(scroll, d.maxScroll()))
}

// sectionAt returns the index of the section containing page row r.
func (d *document) sectionAt(r int) int {
	for i, s := range d.sections {
		if r < s.end() {
			return i
		}
	}
	return len(d.sections) - 1
}

// blockRows splits a rendered lipgloss block into rows starting at col.
func blockRows(block string, col int) []row {
	lines := strings.Split(block, "\n")
	rows := make([]row, len(lines))
	for i, line := range lines {
		rows[i] = row{{col: col, text: line, width: lipgloss.Width(line)}}
	}
	return rows
}

// centered splits block into rows centred within width columns.
func centered(block string, width int) []row {
	return blockRows(block, draw.CenterCol(width, lipgloss.Width(block)))
}

// textSegment builds a single segment centred within width.
func textSegment(text string, width int) segment {
	w := lipgloss.Width(text)
	return segment{col: draw.CenterCol(width, w), text: text, width: w}
}

// sectionBuilder appends the rows of one section and pads it to the
// viewport height.
type sectionBuilder struct {
	doc   *document
	start int
}

func (d *document) beginSection() *sectionBuilder {
	return &sectionBuilder{doc: d, start: len(d.rows)}
}

func (b *sectionBuilder) add(rows ...row) {
	b.doc.rows = append(b.doc.rows, rows...)
}

func (b *sectionBuilder) blank(n int) {
	for range n {
		b.doc.rows = append(b.doc.rows, nil)
	}
}

// row returns the page row index the next added row will get.
func (b *sectionBuilder) row() int {
	return len(b.doc.rows)
}

// end pads the section to at least one viewport and records it.
func (b *sectionBuilder) end(name string, withRain bool) {
	if n := b.row() - b.start; n < b.doc.height {
		b.blank(b.doc.height - n)
	}
	b.doc.sections = append(b.doc.sections, section{
		name:  name,
		start: b.start,
		rows:  b.row() - b.start,
		rain:  withRain,
	})
}

// buildDocument lays out the whole page for a width x height viewport.
func buildDocument(st styles, width, height int) *document {
	d := &document{width: width, height: height}
	d.layoutCover(st)
	d.layoutStack(st)
	d.layoutTimeline(st)
	d.layoutProjects(st)
	return d
}

// contentWidth is the width of text blocks on a page of the given width.
func contentWidth(width int) int {
	return max(20, min(width-8, 76))
}
