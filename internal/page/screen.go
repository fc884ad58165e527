package page

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jallerangel/portfolio/internal/config"
	"github.com/jallerangel/portfolio/internal/draw"
	"github.com/jallerangel/portfolio/internal/rain"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On mode, inactivity or size-class transitions, do a full terminal
	// clear so overlays from the previous state don't persist on screen.
	s := c.state
	if s.Mode != s.prevMode || s.isInactive != s.wasInactive || s.tooSmall != s.wasTooSmall {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.forceRedraw()
		s.prevMode, s.wasInactive, s.wasTooSmall = s.Mode, s.isInactive, s.tooSmall
	}

	if s.tooSmall || c.doc == nil {
		c.drawTooSmallScreen()
		return c.chunkWriter.Flush()
	}

	c.drawPage()
	c.drawStatusBar()

	switch {
	case s.Mode == ModeShutdown:
		c.drawShutdownScreen()
	case s.isInactive:
		c.drawInactivityScreen()
	}

	return c.chunkWriter.Flush()
}

// drawPage draws the visible page rows. Rows over the rain are redrawn
// every frame; other rows only when their content changed.
func (c *Client) drawPage() {
	d := c.doc
	cw := c.chunkWriter
	elapsed := c.now().Sub(c.started)
	dynamic := c.dynamicSegments(elapsed)
	bg := draw.BG(rain.Background)
	_, canvasRows := c.canvas.Grid()

	for i := 0; i < d.height && i < len(c.rowCache); i++ {
		pr := c.state.Scroll + i
		screenRow := i + 1
		var segs row
		if pr < len(d.rows) {
			segs = d.rows[pr]
		}
		extra := dynamic[pr]

		if pr < len(d.rows) && d.sections[d.sectionAt(pr)].rain && i < canvasRows {
			c.canvas.RenderRows(cw, i, i)
			if d.width%draw.CellColumns != 0 {
				cw.WriteAt(d.width, screenRow, bg+" "+draw.ColorReset)
			}
			writeSegments(cw, screenRow, segs, extra)
			c.rowCache[i] = stale
			continue
		}

		sig := signature(segs, extra)
		if c.rowCache[i] == sig {
			continue
		}
		c.rowCache[i] = sig
		cw.WriteString(bg)
		cw.EraseRow(screenRow)
		cw.WriteString(draw.ColorReset)
		writeSegments(cw, screenRow, segs, extra)
	}
}

// dynamicSegments returns the animated parts of the page keyed by page row.
func (c *Client) dynamicSegments(elapsed time.Duration) map[int][]segment {
	d := c.doc
	st := c.styles
	out := d.particleSegments(st, c.particles, elapsed)
	out[d.titleRow] = append(out[d.titleRow], d.titleSegment(st, elapsed))
	hintRow, hint := d.hintSegment(st, elapsed)
	out[hintRow] = append(out[hintRow], hint)
	out[d.footerRow] = append(out[d.footerRow], textSegment(st.muted.Render(c.footerLine()), d.width))
	return out
}

// footerLine returns the footer, refreshing the counts every
// config.StatsRefresh.
func (c *Client) footerLine() string {
	now := c.now()
	if c.footer != "" && now.Sub(c.footerAt) < config.StatsRefresh {
		return c.footer
	}
	visits := int64(-1)
	if c.visits != nil {
		visits = c.visits()
	}
	c.footer = footerText(visits, c.registry.Active())
	c.footerAt = now
	return c.footer
}

func writeSegments(cw *draw.ChunkWriter, screenRow int, segs, extra []segment) {
	for _, s := range segs {
		cw.WriteAt(s.col, screenRow, s.text)
	}
	for _, s := range extra {
		cw.WriteAt(s.col, screenRow, s.text)
	}
}

// signature identifies the content of a row for the redraw cache.
func signature(segs, extra []segment) string {
	var sb strings.Builder
	for _, list := range [2][]segment{segs, extra} {
		for _, s := range list {
			sb.WriteString(strconv.Itoa(s.col))
			sb.WriteByte(':')
			sb.WriteString(s.text)
			sb.WriteByte('\x1f')
		}
	}
	return sb.String()
}

// drawStatusBar draws the key help and reading position on the last row.
func (c *Client) drawStatusBar() {
	d := c.doc
	screenRow := d.height + 1
	if screenRow-1 >= len(c.rowCache) {
		return
	}

	left := " ↑↓ scroll · 1-4 jump · q quit"
	percent := 100
	if m := d.maxScroll(); m > 0 {
		percent = c.state.Scroll * 100 / m
	}
	right := fmt.Sprintf("%s %3d%% ", d.sections[d.sectionAt(c.state.Scroll)].name, percent)
	gap := d.width - draw.TextWidth(left) - draw.TextWidth(right)
	if gap < 1 {
		left = ""
		gap = max(0, d.width-draw.TextWidth(right))
	}
	bar := c.styles.status.Render(left + strings.Repeat(" ", gap) + right)

	if c.rowCache[screenRow-1] == bar {
		return
	}
	c.rowCache[screenRow-1] = bar
	c.chunkWriter.WriteAt(1, screenRow, bar)
}

// drawOverlay draws a centred modal box over the page.
func (c *Client) drawOverlay(lines ...string) {
	width := min(c.doc.width-4, 64)
	box := c.styles.overlay.Width(width).Render(strings.Join(lines, "\n"))
	top := max(1, (c.doc.height-lipgloss.Height(box))/2+1)
	for i, r := range centered(box, c.doc.width) {
		for _, s := range r {
			c.chunkWriter.WriteAt(s.col, top+i, s.text)
		}
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen() {
	remaining := int(config.InactivityDisconnectUser - c.now().Sub(c.lastInput).Seconds())
	c.drawOverlay(
		c.styles.title.Render("INACTIVITY WARNING"),
		"",
		fmt.Sprintf("You have been inactive for too long. You will be disconnected in %d seconds.", max(0, remaining)),
		"",
		c.styles.muted.Render("Press any key to continue"),
	)
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen() {
	remaining := int(c.state.shutdownTimer) + 1
	c.drawOverlay(
		c.styles.title.Render("SERVER SHUTTING DOWN"),
		"",
		"The server is restarting for maintenance.",
		"Please reconnect in a moment.",
		"",
		fmt.Sprintf("Disconnecting in %d seconds...", remaining),
		"",
		c.styles.muted.Render("Press Q to disconnect now"),
	)
}

// drawTooSmallScreen asks for a bigger terminal.
func (c *Client) drawTooSmallScreen() {
	c.sizeMu.Lock()
	width, height := c.renderWidth, c.renderHeight
	c.sizeMu.Unlock()

	lines := []string{
		"Terminal too small",
		fmt.Sprintf("Resize to at least %d×%d", config.MinTermWidth, config.MinTermHeight),
	}
	top := max(1, height/2)
	for i, l := range lines {
		l = draw.Truncate(l, width)
		c.chunkWriter.WriteAt(draw.CenterCol(width, draw.TextWidth(l)), top+i, l)
	}
}
