package web

import (
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/jallerangel/portfolio/internal/draw"
	"github.com/jallerangel/portfolio/internal/rain"
)

// Frame is everything the rain drew in one tick, in browser canvas terms.
type Frame struct {
	Width      int     `json:"w"`
	Height     int     `json:"h"`
	Background string  `json:"bg,omitempty"`
	Fade       float64 `json:"fade"`
	Glyphs     []Glyph `json:"glyphs"`
}

// Glyph is one fillText call. Y is the baseline.
type Glyph struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Glyph string  `json:"g"`
	Color string  `json:"c"`
	Alpha float64 `json:"a"`
}

// StreamSurface is a rain.Surface that records draw calls as frames for a
// browser to replay on a real canvas.
type StreamSurface struct {
	mu    sync.Mutex
	frame Frame
}

// Compile-time check that StreamSurface implements rain.Surface.
var _ rain.Surface = (*StreamSurface)(nil)

// Resize records the new surface size.
func (s *StreamSurface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Width, s.frame.Height = width, height
}

// Fade records the background wash of the current frame.
func (s *StreamSurface) Fade(c colorful.Color, alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Background = c.Clamped().Hex()
	s.frame.Fade = alpha
}

// DrawGlyph records a glyph. The gradient is sampled half a cell above the
// baseline, the middle of the glyph.
func (s *StreamSurface) DrawGlyph(x, y int, glyph rune, g draw.Gradient) {
	c, alpha := g.At(float64(y - rain.CellSize/2))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Glyphs = append(s.frame.Glyphs, Glyph{
		X:     x,
		Y:     y,
		Glyph: string(glyph),
		Color: c.Clamped().Hex(),
		Alpha: alpha,
	})
}

// Take returns the frame drawn since the last Take and starts a new one.
// The size carries over.
func (s *StreamSurface) Take() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.frame
	s.frame = Frame{Width: f.Width, Height: f.Height}
	return f
}
