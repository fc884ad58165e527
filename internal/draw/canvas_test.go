package draw

import (
	"bytes"
	"strings"
	"testing"
)

var testBackground = RGB(24, 24, 27)

// glyphAt returns the glyph at a cell and whether it is still visible.
func glyphAt(c *Canvas, col, row int) (rune, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return ' ', false
	}
	cell := c.cells[row*c.cols+col]
	return cell.glyph, c.visible(cell)
}

func solid(r, g, b uint8) Gradient {
	return Gradient{Stops: []ColorStop{{Offset: 0, Color: RGB(r, g, b), Alpha: 1}}}
}

func TestCanvasResizeGrid(t *testing.T) {
	c := NewCanvas(14, testBackground)
	c.Resize(700, 400)

	if cols, rows := c.Grid(); cols != 50 || rows != 28 {
		t.Errorf("Grid() = %dx%d, want 50x28", cols, rows)
	}
	if w, h := c.Size(); w != 700 || h != 400 {
		t.Errorf("Size() = %dx%d, want 700x400", w, h)
	}
}

func TestCanvasDrawGlyphAboveBaseline(t *testing.T) {
	c := NewCanvas(14, testBackground)
	c.Resize(140, 140)

	// Baseline at 3 cells: the glyph occupies row 2
	c.DrawGlyph(28, 42, 'ア', solid(59, 130, 246))

	if g, ok := glyphAt(c, 2, 2); g != 'ア' || !ok {
		t.Errorf("glyphAt(2,2) = %q visible=%v, want 'ア' visible", g, ok)
	}
	if _, ok := glyphAt(c, 2, 3); ok {
		t.Error("glyph leaked below its baseline")
	}
}

func TestCanvasClipsOutsideGlyphs(t *testing.T) {
	c := NewCanvas(14, testBackground)
	c.Resize(140, 140)

	c.DrawGlyph(0, -140, 'ア', solid(255, 255, 255))
	c.DrawGlyph(0, 0, 'ア', solid(255, 255, 255))
	c.DrawGlyph(0, 1000, 'ア', solid(255, 255, 255))
	c.DrawGlyph(1000, 28, 'ア', solid(255, 255, 255))

	cols, rows := c.Grid()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if _, ok := glyphAt(c, col, row); ok {
				t.Errorf("unexpected glyph at %d,%d", col, row)
			}
		}
	}
}

func TestCanvasFadeHidesOldGlyphs(t *testing.T) {
	c := NewCanvas(14, testBackground)
	c.Resize(140, 140)
	c.DrawGlyph(0, 14, '1', solid(59, 130, 246))

	for range 200 {
		c.Fade(testBackground, 0.05)
	}
	if _, ok := glyphAt(c, 0, 0); ok {
		t.Error("glyph still visible after 200 fades")
	}
}

func TestCanvasResizeKeepsOverlap(t *testing.T) {
	c := NewCanvas(14, testBackground)
	c.Resize(140, 140)
	c.DrawGlyph(14, 28, 'カ', solid(59, 130, 246))

	c.Resize(280, 280)
	if g, ok := glyphAt(c, 1, 1); g != 'カ' || !ok {
		t.Errorf("glyph lost on grow: %q %v", g, ok)
	}
	c.Resize(14, 14)
	if cols, rows := c.Grid(); cols != 1 || rows != 1 {
		t.Errorf("Grid() after shrink = %dx%d, want 1x1", cols, rows)
	}
}

func TestCanvasRenderRowsWritesFullRows(t *testing.T) {
	c := NewCanvas(14, testBackground)
	c.Resize(42, 28)
	c.DrawGlyph(14, 14, '0', solid(255, 255, 255))

	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	c.RenderRows(cw, 0, 5)
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}

	s := out.String()
	if !strings.Contains(s, "\033[1;1H") || !strings.Contains(s, "\033[2;1H") {
		t.Errorf("expected both rows positioned, got %q", s)
	}
	if strings.Contains(s, "\033[3;1H") {
		t.Error("rendered a row past the grid")
	}
	// Half-width glyphs are padded to the two-column cell
	if !strings.Contains(s, "0 ") {
		t.Errorf("narrow glyph not padded: %q", s)
	}
}
