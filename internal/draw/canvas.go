package draw

import (
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

// CellColumns is the number of terminal columns one glyph cell spans.
// Katakana are full-width, so every cell is two columns wide.
const CellColumns = 2

// visibleThreshold is the colour distance from the background below which
// a cell is considered faded out and rendered blank.
const visibleThreshold = 0.02

// glyphCell is one cell of the canvas: the last glyph drawn there and its
// current (faded) colour.
type glyphCell struct {
	glyph rune
	color colorful.Color
}

// Canvas is a pixel-addressed glyph surface backed by a grid of terminal
// cells. Pixel coordinates are divided by the cell size to find the cell,
// which lets the same drawing code target a browser canvas or a terminal.
//
// Canvas is safe for concurrent use: the rain animator draws into it on its
// own goroutine while the page loop renders it.
type Canvas struct {
	mu         sync.Mutex
	cellPx     int
	pxWidth    int
	pxHeight   int
	cols       int
	rows       int
	background colorful.Color
	cells      []glyphCell // Flat slice: [row * cols + col]

	// Reusable buffer for row rendering
	rowBuf strings.Builder
}

// NewCanvas creates an empty canvas whose cells are cellPx pixels square.
// Size it with Resize before drawing.
func NewCanvas(cellPx int, background colorful.Color) *Canvas {
	if cellPx < 1 {
		cellPx = 1
	}
	return &Canvas{cellPx: cellPx, background: background}
}

// Resize sets the pixel dimensions of the canvas. The cell grid is
// reallocated only when the cell dimensions change; surviving cells keep
// their content like a browser canvas keeps nothing but the pixels that fit.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pxWidth, c.pxHeight = width, height
	cols, rows := max(0, width/c.cellPx), max(0, height/c.cellPx)
	if cols == c.cols && rows == c.rows {
		return
	}

	cells := make([]glyphCell, cols*rows)
	for i := range cells {
		cells[i] = glyphCell{glyph: ' ', color: c.background}
	}
	for row := 0; row < min(rows, c.rows); row++ {
		copy(cells[row*cols:row*cols+min(cols, c.cols)], c.cells[row*c.cols:])
	}
	c.cells, c.cols, c.rows = cells, cols, rows
}

// Fade blends every cell towards col by alpha, the terminal analogue of
// painting a translucent rectangle over the whole canvas.
func (c *Canvas) Fade(col colorful.Color, alpha float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cells {
		c.cells[i].color = c.cells[i].color.BlendRgb(col, alpha)
	}
}

// DrawGlyph draws glyph with its baseline at pixel (x, y), filled with the
// gradient sampled at y. Glyphs whose cell lies outside the canvas are
// clipped.
func (c *Canvas) DrawGlyph(x, y int, glyph rune, g Gradient) {
	col := x / c.cellPx
	row := floorDiv(y, c.cellPx) - 1 // text sits above its baseline

	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}
	fill, alpha := g.At(float64(y))
	cell := &c.cells[row*c.cols+col]
	cell.glyph = glyph
	cell.color = cell.color.BlendRgb(fill, alpha)
}

// Size returns the pixel dimensions last passed to Resize.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pxWidth, c.pxHeight
}

// Grid returns the cell grid dimensions.
func (c *Canvas) Grid() (cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols, c.rows
}

func (c *Canvas) visible(cell glyphCell) bool {
	return cell.glyph != ' ' && cell.color.DistanceRgb(c.background) > visibleThreshold
}

// RenderRows writes canvas rows first..last (inclusive, 0-based) onto the
// terminal rows of the same index using cw. Every cell is written, blank
// ones as background-coloured spaces, so the rows need no clearing first.
func (c *Canvas) RenderRows(cw *ChunkWriter, first, last int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	first = max(first, 0)
	last = min(last, c.rows-1)
	bg := BG(c.background)

	for row := first; row <= last; row++ {
		c.rowBuf.Reset()
		c.rowBuf.WriteString(bg)
		for col := 0; col < c.cols; col++ {
			cell := c.cells[row*c.cols+col]
			if !c.visible(cell) {
				c.rowBuf.WriteString("  ")
				continue
			}
			c.rowBuf.WriteString(FG(cell.color))
			c.rowBuf.WriteRune(cell.glyph)
			if runewidth.RuneWidth(cell.glyph) < CellColumns {
				c.rowBuf.WriteByte(' ')
			}
		}
		c.rowBuf.WriteString(ColorReset)
		cw.WriteAt(1, row+1, c.rowBuf.String())
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
