// Package page renders the portfolio as one scrolling terminal page with the
// code rain behind the timeline. A Client serves one viewer over any
// reader/writer pair: an SSH session or the local terminal.
package page

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/jallerangel/portfolio/internal/config"
	"github.com/jallerangel/portfolio/internal/draw"
	"github.com/jallerangel/portfolio/internal/input"
	"github.com/jallerangel/portfolio/internal/rain"
	"github.com/jallerangel/portfolio/internal/session"
)

// Client handles rendering and input for a single connection.
type Client struct {
	registry     session.Registry
	handle       *session.Handle
	state        *PageState
	styles       styles
	doc          *document
	particles    []particle
	canvas       *draw.Canvas
	rain         *rain.Animator
	resizes      rain.Broadcaster
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	visits       func() int64
	now          func() time.Time
	started      time.Time
	lastInput    time.Time

	// Render area, read by the rain goroutine through viewport
	sizeMu       sync.Mutex
	renderWidth  int
	renderHeight int
	offsetCol    int
	offsetRow    int
	measured     bool

	rowCache []string // Per screen row, what was last written there
	footer   string
	footerAt time.Time
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	User         string
	Transport    string
	Visits       func() int64     // Total visits for the footer; nil hides it
	Rand         rain.Rand        // Particles and rain; seeded from the clock if nil
	Ticker       rain.TickerFunc  // Rain timer; rain.DefaultTicker if nil
	Now          func() time.Time // Clock; time.Now if nil
}

// stale marks a row cache entry that must be redrawn.
const stale = "\x00"

// NewClient creates a new client registered with registry.
func NewClient(registry session.Registry, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rain.NewRand(0)
	}

	c := &Client{
		registry:     registry,
		handle:       registry.Register(opts.User, opts.Transport),
		state:        NewPageState(),
		styles:       newStyles(w),
		particles:    newParticles(rnd, config.CoverParticles),
		canvas:       draw.NewCanvas(rain.CellSize, rain.Background),
		chunkWriter:  draw.NewChunkWriter(w, 0, 0),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		visits:       opts.Visits,
		now:          now,
	}
	c.started = now()
	c.lastInput = c.started
	c.rain = rain.NewAnimator(
		rain.Host{Surface: c.canvas, Viewport: c.viewport, Resizes: &c.resizes},
		rain.Options{Rand: rnd, Ticker: opts.Ticker},
	)

	// Lay out for the initial size so the rain mounts at the right size
	c.updateScreen()
	return c
}

// Run starts the client loop. Blocks until the viewer quits, the input ends
// or the server stops.
func (c *Client) Run() error {
	draw.EnterAltScreen(c.writer)
	draw.HideCursor(c.writer)
	defer draw.ExitAltScreen(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)
	c.forceRedraw()

	c.rain.Start()
	defer c.rain.Stop()
	defer c.registry.Unregister(c.handle.ID)

	lastTime := c.now()

	for c.state.Running {
		frameStart := c.now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput()
		c.processSessionEvents()
		c.updateScreen()

		if c.state.Mode == ModeShutdown {
			c.updateShutdownState()
		}

		if err := c.drawFrame(); err != nil {
			return err
		}

		elapsed := c.now().Sub(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads pending input, tracks inactivity and applies
// navigation keys.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)
	idle := c.now().Sub(c.lastInput).Seconds()

	if len(c.state.Input.Pressed) > 0 {
		c.lastInput = c.now()
		c.state.isInactive = false
	} else if idle > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if idle > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.state.Input.Has(input.KeyQuit) || c.state.Input.Closed {
		c.state.Running = false
	}

	if c.state.Mode == ModeBrowsing {
		c.navigate(c.state.Input)
	}
}

// navigate applies scroll keys in the order they were pressed.
func (c *Client) navigate(in input.Input) {
	d := c.doc
	if d == nil {
		return
	}
	scroll := c.state.Scroll
	for _, key := range in.Keys {
		switch key {
		case input.KeyUp:
			scroll--
		case input.KeyDown:
			scroll++
		case input.KeyPageUp:
			scroll -= d.height
		case input.KeyPageDown:
			scroll += d.height
		case input.KeyTop:
			scroll = 0
		case input.KeyBottom:
			scroll = d.maxScroll()
		case input.KeySection:
			if in.Section >= 0 && in.Section < len(d.sections) {
				scroll = d.sections[in.Section].start
			}
		case input.KeyEnter:
			// Next section, like the cover's scroll hint
			if next := d.sectionAt(scroll) + 1; next < len(d.sections) {
				scroll = d.sections[next].start
			}
		}
		scroll = d.clampScroll(scroll)
	}
	c.state.Scroll = scroll
}

// processSessionEvents handles events from the session hub.
func (c *Client) processSessionEvents() {
	for {
		select {
		case event, ok := <-c.handle.Events:
			if !ok {
				c.state.Running = false
				return
			}
			if event.Type == session.EventServerShutdown && c.state.Mode != ModeShutdown {
				c.state.Mode = ModeShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes the page is laid out again, the rain is told to
// follow and the terminal is cleared to remove residual content.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	c.sizeMu.Lock()
	changed := !c.measured || renderWidth != c.renderWidth || renderHeight != c.renderHeight ||
		offsetCol != c.offsetCol || offsetRow != c.offsetRow
	c.measured = true
	c.renderWidth, c.renderHeight = renderWidth, renderHeight
	c.offsetCol, c.offsetRow = offsetCol, offsetRow
	c.sizeMu.Unlock()

	if !changed {
		return
	}

	c.chunkWriter.SetOffset(offsetCol, offsetRow)
	c.state.tooSmall = renderWidth < config.MinTermWidth || renderHeight < config.MinTermHeight
	if !c.state.tooSmall {
		c.relayout(renderWidth, renderHeight-config.StatusBarRows)
	}
	c.resizes.Notify()
	c.chunkWriter.WriteString("\033[H\033[2J")
	c.forceRedraw()
}

// relayout rebuilds the page for a new size, keeping the reader in the
// same section.
func (c *Client) relayout(width, height int) {
	section, offset := 0, 0
	if c.doc != nil {
		section = c.doc.sectionAt(c.state.Scroll)
		offset = c.state.Scroll - c.doc.sections[section].start
	}
	c.doc = buildDocument(c.styles, width, height)
	s := c.doc.sections[section]
	c.state.Scroll = c.doc.clampScroll(s.start + min(offset, s.rows-1))
}

// viewport reports the rain surface size in pixels: one rain cell per two
// terminal columns and one per page row.
func (c *Client) viewport() (int, int, error) {
	c.sizeMu.Lock()
	defer c.sizeMu.Unlock()
	pageRows := max(0, c.renderHeight-config.StatusBarRows)
	return c.renderWidth / draw.CellColumns * rain.CellSize, pageRows * rain.CellSize, nil
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// forceRedraw invalidates every cached row.
func (c *Client) forceRedraw() {
	c.sizeMu.Lock()
	rows := c.renderHeight
	c.sizeMu.Unlock()
	if cap(c.rowCache) < rows {
		c.rowCache = make([]string, rows)
	}
	c.rowCache = c.rowCache[:rows]
	for i := range c.rowCache {
		c.rowCache[i] = stale
	}
}
