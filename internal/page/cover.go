package page

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jallerangel/portfolio/internal/config"
	"github.com/jallerangel/portfolio/internal/content"
	"github.com/jallerangel/portfolio/internal/draw"
	"github.com/jallerangel/portfolio/internal/rain"
)

const (
	particleGlyph = "•"
	hintGlyph     = "↓"
)

// layoutCover lays out the cover card: icon, name, a blank line for the
// rotating title, summary, links and the scroll hint.
func (d *document) layoutCover(st styles) {
	b := d.beginSection()

	padX := 4
	if d.width < 60 {
		padX = 1
	}
	inner := contentWidth(d.width) - 2*padX - 2

	var lines []string
	add := func(s string) int {
		lines = append(lines, s)
		return len(lines) - 1
	}
	add(st.accent.Bold(true).Render("</>"))
	add("")
	add(st.gradientText(spaced(content.Profile.Name, inner), nameFrom, nameTo, true))
	add("")
	titleLine := add("")
	add("")
	for _, l := range draw.Wrap(content.Profile.Summary, inner) {
		add(st.text.Render(l))
	}
	add("")
	for _, l := range coverLinks(st, inner) {
		add(l)
	}
	add("")
	hintLine := add("")
	add("")

	card := st.card.
		Padding(1, padX).
		Width(inner + 2*padX).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))

	cardHeight := lipgloss.Height(card)
	cardWidth := lipgloss.Width(card)
	top := max(1, (d.height-cardHeight)/2)
	b.blank(top)

	cardTop := b.row()
	col := draw.CenterCol(d.width, cardWidth)
	b.add(blockRows(card, col)...)

	// Border plus top padding sit above the first content line.
	d.titleRow = cardTop + 2 + titleLine
	d.hintRow = cardTop + 2 + hintLine
	d.coverCard = box{top: cardTop, bottom: cardTop + cardHeight, left: col, right: col + cardWidth}
	b.end(sectionNames[SectionCover], false)
}

// spaced letter-spaces s when it fits, the terminal's version of a big
// display heading.
func spaced(s string, width int) string {
	runes := []rune(s)
	if len(runes)*2-1 > width {
		return s
	}
	var sb strings.Builder
	for i, r := range runes {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// coverLinks renders the outbound links as OSC 8 hyperlinks, one line when
// they fit and one link per line otherwise.
func coverLinks(st styles, width int) []string {
	parts := make([]string, 0, len(content.Profile.Links))
	total := 0
	for _, l := range content.Profile.Links {
		label := "[" + l.Label + "]"
		parts = append(parts, draw.Hyperlink(l.URL, st.link.Render(label)))
		total += draw.TextWidth(label) + 2
	}
	if total-2 > width {
		return parts
	}
	return []string{strings.Join(parts, st.base.Render("  "))}
}

// titleSegment returns the rotating title shown after elapsed.
func (d *document) titleSegment(st styles, elapsed time.Duration) segment {
	inner := d.coverCard.right - d.coverCard.left - 4
	title := draw.Truncate(content.TitleAt(elapsed), max(1, inner))
	return textSegment(st.title.Render(title), d.width)
}

// hintSegment returns the scroll hint and the row it sits on after
// elapsed. The arrow drops one row for the middle half of each period.
func (d *document) hintSegment(st styles, elapsed time.Duration) (int, segment) {
	phase := math.Mod(elapsed.Seconds(), config.ScrollHintPeriod.Seconds()) / config.ScrollHintPeriod.Seconds()
	r := d.hintRow
	if phase >= 0.25 && phase < 0.75 {
		r++
	}
	return r, textSegment(st.accent.Render(hintGlyph), d.width)
}

// particle drifts linearly between two points of the cover, reversing at
// each end.
type particle struct {
	fromX, fromY float64 // Fractions of the cover area
	toX, toY     float64
	period       time.Duration // One leg
}

// newParticles seeds n particles with random endpoints and leg periods
// between config.ParticleMinPeriod and config.ParticleMaxPeriod.
func newParticles(r rain.Rand, n int) []particle {
	spread := int(config.ParticleMaxPeriod - config.ParticleMinPeriod)
	ps := make([]particle, n)
	for i := range ps {
		period := config.ParticleMinPeriod
		if spread > 0 {
			period += time.Duration(r.Intn(spread + 1))
		}
		ps[i] = particle{
			fromX:  r.Float64(),
			fromY:  r.Float64(),
			toX:    r.Float64(),
			toY:    r.Float64(),
			period: period,
		}
	}
	return ps
}

// at returns the particle position after elapsed as fractions of the area.
func (p particle) at(elapsed time.Duration) (x, y float64) {
	if p.period <= 0 {
		return p.fromX, p.fromY
	}
	legs := float64(elapsed) / float64(p.period)
	t := math.Mod(legs, 2)
	if t > 1 {
		t = 2 - t
	}
	return p.fromX + (p.toX-p.fromX)*t, p.fromY + (p.toY-p.fromY)*t
}

// particleSegments places the cover particles, skipping any that fall on
// the card. Keys are page rows.
func (d *document) particleSegments(st styles, ps []particle, elapsed time.Duration) map[int][]segment {
	cover := d.sections[SectionCover]
	out := make(map[int][]segment)
	dot := st.particle.Render(particleGlyph)
	for _, p := range ps {
		x, y := p.at(elapsed)
		col := 1 + min(d.width-1, int(x*float64(d.width)))
		r := cover.start + min(cover.rows-1, int(y*float64(cover.rows)))
		if d.coverCard.contains(r, col) {
			continue
		}
		out[r] = append(out[r], segment{col: col, text: dot, width: 1})
	}
	return out
}
