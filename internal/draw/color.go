package draw

import (
	"math"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorReset clears all colours and attributes.
const ColorReset = "\033[0m"

// RGB builds a colour from 8-bit channels.
func RGB(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// FG returns the 24-bit foreground escape sequence for c.
func FG(c colorful.Color) string {
	return trueColor(38, c)
}

// BG returns the 24-bit background escape sequence for c.
func BG(c colorful.Color) string {
	return trueColor(48, c)
}

func trueColor(code int, c colorful.Color) string {
	r, g, b := c.Clamped().RGB255()
	buf := make([]byte, 0, 20)
	buf = append(buf, "\033["...)
	buf = strconv.AppendInt(buf, int64(code), 10)
	buf = append(buf, ";2;"...)
	buf = strconv.AppendInt(buf, int64(r), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(g), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(b), 10)
	buf = append(buf, 'm')
	return string(buf)
}

// ColorStop is one stop of a linear gradient. Offset is in [0, 1].
type ColorStop struct {
	Offset float64
	Color  colorful.Color
	Alpha  float64
}

// Gradient is a vertical linear gradient spanning pixel rows From..To.
// Stops must be sorted by Offset.
type Gradient struct {
	From  float64
	To    float64
	Stops []ColorStop
}

// At samples the gradient at pixel row y. Rows outside From..To take the
// colour of the nearest end stop, the way a canvas gradient pads.
func (g Gradient) At(y float64) (colorful.Color, float64) {
	if len(g.Stops) == 0 {
		return colorful.Color{}, 0
	}
	var t float64
	if span := g.To - g.From; span != 0 {
		t = (y - g.From) / span
	}
	t = math.Max(0, math.Min(1, t))

	first := g.Stops[0]
	if t <= first.Offset {
		return first.Color, first.Alpha
	}
	for i := 1; i < len(g.Stops); i++ {
		prev, next := g.Stops[i-1], g.Stops[i]
		if t > next.Offset {
			continue
		}
		local := 0.0
		if next.Offset > prev.Offset {
			local = (t - prev.Offset) / (next.Offset - prev.Offset)
		}
		return prev.Color.BlendRgb(next.Color, local), prev.Alpha + (next.Alpha-prev.Alpha)*local
	}
	last := g.Stops[len(g.Stops)-1]
	return last.Color, last.Alpha
}
