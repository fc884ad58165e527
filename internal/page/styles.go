package page

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/jallerangel/portfolio/internal/rain"
)

// Palette
var (
	colorBackground = lipgloss.Color(rain.Background.Hex()) // zinc-900
	colorBorder     = lipgloss.Color("#3f3f46")             // zinc-700
	colorText       = lipgloss.Color("#d4d4d8")             // zinc-300
	colorMuted      = lipgloss.Color("#a1a1aa")             // zinc-400
	colorAccent     = lipgloss.Color("#60a5fa")             // blue-400
	colorStrong     = lipgloss.Color("#3b82f6")             // blue-500

	nameFrom = colorful.Color{R: 0xbf / 255.0, G: 0xdb / 255.0, B: 0xfe / 255.0} // blue-200
	nameTo   = colorful.Color{R: 0x3b / 255.0, G: 0x82 / 255.0, B: 0xf6 / 255.0} // blue-500
)

// styles are the lipgloss styles of one session. Each session has its own
// renderer because SSH clients do not share the server's terminal.
type styles struct {
	renderer *lipgloss.Renderer

	base     lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	accent   lipgloss.Style
	title    lipgloss.Style
	link     lipgloss.Style
	card     lipgloss.Style
	badge    lipgloss.Style
	year     lipgloss.Style
	spine    lipgloss.Style
	particle lipgloss.Style
	status   lipgloss.Style
	overlay  lipgloss.Style
}

// newStyles builds the styles for output w. The colour profile is forced to
// true colour: the rain gradient is meaningless in 16 colours and SSH
// sessions rarely advertise their capabilities.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.TrueColor)
	r.SetHasDarkBackground(true)

	base := r.NewStyle().Background(colorBackground)
	return styles{
		renderer: r,
		base:     base,
		text:     base.Foreground(colorText),
		muted:    base.Foreground(colorMuted),
		accent:   base.Foreground(colorAccent),
		title:    base.Foreground(colorAccent).Bold(true),
		link:     base.Foreground(colorAccent).Underline(true),
		card: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			BorderBackground(colorBackground),
		badge:    r.NewStyle().Background(lipgloss.Color("#1e3a8a")).Foreground(lipgloss.Color("#bfdbfe")).Padding(0, 1),
		year:     base.Foreground(colorStrong).Bold(true),
		spine:    base.Foreground(colorStrong),
		particle: base.Foreground(lipgloss.Color("#2e425e")), // blue-400 at 30%
		status:   r.NewStyle().Background(lipgloss.Color("#27272a")).Foreground(colorMuted),
		overlay: base.
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorStrong).
			BorderBackground(colorBackground).
			Foreground(colorText).
			Padding(1, 3).
			Align(lipgloss.Center),
	}
}

// gradientText colours each rune of s along a from-to blend, the terminal
// counterpart of a CSS text gradient.
func (s styles) gradientText(text string, from, to colorful.Color, bold bool) string {
	runes := []rune(text)
	out := make([]byte, 0, len(text)*24)
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		st := s.base.Foreground(lipgloss.Color(from.BlendLab(to, t).Clamped().Hex())).Bold(bold)
		out = append(out, st.Render(string(r))...)
	}
	return string(out)
}
