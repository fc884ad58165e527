// Package rain implements the falling-glyph ("code rain") background
// effect: a grid of columns whose heads advance one cell per tick, drawn
// onto a fading surface that tracks the viewport size.
//
// The Animator owns its tick timer and resize listener for as long as it
// is mounted. Ticks and resizes are handled one at a time on a single
// goroutine, so none of the state below needs to be shared.
package rain

import (
	"math/rand"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/jallerangel/portfolio/internal/draw"
)

// Effect parameters.
const (
	CellSize       = 14                    // Pixel width and height of one glyph cell
	TickPeriod     = 33 * time.Millisecond // ~30 Hz
	InitialSpread  = 100                   // Heads start uniformly in [-InitialSpread, 0)
	ResetThreshold = 0.975                 // A head past the bottom restarts when rand > this
	FadeAlpha      = 0.05                  // Opacity of the per-tick background wash
	TrailCells     = 20                    // Gradient length above the head, in cells
)

// Colours of the effect.
var (
	Background = draw.RGB(24, 24, 27)
	HeadColor  = draw.RGB(0x3b, 0x82, 0xf6)
	TailColor  = draw.RGB(37, 99, 235)
)

// Glyphs is the default alphabet: katakana plus binary digits.
var Glyphs = []rune("アイウエオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワヲン01")

// Surface is the drawing target the animator paints into. Coordinates are
// pixels; y is the glyph baseline.
type Surface interface {
	// Resize sets the surface dimensions to the viewport's.
	Resize(width, height int)
	// Fade paints c with the given opacity over the whole surface.
	Fade(c colorful.Color, alpha float64)
	// DrawGlyph draws one glyph filled with g.
	DrawGlyph(x, y int, glyph rune, g draw.Gradient)
}

// ViewportFunc reports the current viewport size in pixels.
type ViewportFunc func() (width, height int, err error)

// Rand is the random source the animator draws glyphs and resets from.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// TickerFunc starts a periodic timer and returns its channel and a stop
// function. Stop must be safe to call more than once.
type TickerFunc func(period time.Duration) (ticks <-chan time.Time, stop func())

// DefaultTicker is a TickerFunc backed by time.Ticker.
func DefaultTicker(period time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(period)
	return t.C, t.Stop
}

// NewRand returns a seeded random source. A zero seed picks one from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ColumnCount returns the number of glyph columns for a surface width.
// There is always at least one column.
func ColumnCount(width int) int {
	n := width / CellSize
	if n < 1 {
		return 1
	}
	return n
}

// TrailGradient returns the fill for a glyph drawn at baseline y: brightest
// at y, fading to near transparent TrailCells cells above it.
func TrailGradient(y int) draw.Gradient {
	return draw.Gradient{
		From: float64(y - CellSize*TrailCells),
		To:   float64(y),
		Stops: []draw.ColorStop{
			{Offset: 0, Color: TailColor, Alpha: 0.1},
			{Offset: 0.5, Color: HeadColor, Alpha: 1},
			{Offset: 1, Color: HeadColor, Alpha: 1},
		},
	}
}
