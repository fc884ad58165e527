package rain

import (
	"sync"
	"time"
)

// Host is what an Animator mounts into: a surface to draw on, the viewport
// whose size the surface tracks and the source of resize events.
// A nil Surface makes the animator a no-op.
type Host struct {
	Surface  Surface
	Viewport ViewportFunc
	Resizes  Notifier
}

// Options configures an Animator. Zero fields take the defaults.
type Options struct {
	Rand      Rand          // Glyph and reset randomness; seeded from the clock if nil
	Ticker    TickerFunc    // Timer factory; DefaultTicker if nil
	Period    time.Duration // Tick period; TickPeriod if zero
	Glyphs    []rune        // Alphabet; Glyphs if empty
	AfterTick func()        // Called on the animator goroutine after every tick
}

// Animator advances the rain field on a fixed-rate timer while mounted.
//
// Start mounts it (sizes the surface, seeds the columns, acquires the
// timer and the resize listener); Stop releases both. Tick and
// HandleResize are the two event handlers; while mounted they only ever
// run on the animator goroutine.
type Animator struct {
	host      Host
	rand      Rand
	newTicker TickerFunc
	period    time.Duration
	glyphs    []rune
	afterTick func()

	// Field state, guarded by stateMu so tests and renderers can read it
	stateMu sync.Mutex
	width   int
	height  int
	heads   []int
	ticks   uint64

	// Lifecycle, guarded by mu
	mu             sync.Mutex
	mounted        bool
	stopTicker     func()
	removeListener func()
	quit           chan struct{}
	done           chan struct{}
}

// NewAnimator creates an unmounted animator for host.
func NewAnimator(host Host, opts Options) *Animator {
	a := &Animator{
		host:      host,
		rand:      opts.Rand,
		newTicker: opts.Ticker,
		period:    opts.Period,
		glyphs:    opts.Glyphs,
		afterTick: opts.AfterTick,
	}
	if a.rand == nil {
		a.rand = NewRand(0)
	}
	if a.newTicker == nil {
		a.newTicker = DefaultTicker
	}
	if a.period <= 0 {
		a.period = TickPeriod
	}
	if len(a.glyphs) == 0 {
		a.glyphs = Glyphs
	}
	return a
}

// Start mounts the animator and begins ticking. Without a surface it only
// records that it is mounted. Calling Start on a mounted animator does
// nothing; after Stop it mounts afresh with newly seeded columns.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted {
		return
	}
	a.mounted = true
	if a.host.Surface == nil {
		return
	}

	a.mount()

	ticks, stopTicker := a.newTicker(a.period)
	resizes := make(chan struct{}, 1)
	var removeListener func()
	if a.host.Resizes != nil {
		removeListener = a.host.Resizes.AddListener(func() {
			// Coalesce bursts: one pending resize is enough, the handler
			// reads the latest viewport size.
			select {
			case resizes <- struct{}{}:
			default:
			}
		})
	}

	a.stopTicker = stopTicker
	a.removeListener = removeListener
	a.quit = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(ticks, resizes, a.quit, a.done)
}

// Stop unmounts the animator: it cancels the tick timer, then removes the
// resize listener, then waits for the animator goroutine to exit. No tick
// runs after Stop returns. Stop is idempotent and safe before the first
// tick or without a surface.
func (a *Animator) Stop() {
	a.mu.Lock()
	if a.stopTicker != nil {
		a.stopTicker()
		a.stopTicker = nil
	}
	if a.removeListener != nil {
		a.removeListener()
		a.removeListener = nil
	}
	quit, done := a.quit, a.done
	a.quit, a.done = nil, nil
	a.mounted = false
	a.mu.Unlock()

	if quit != nil {
		close(quit)
		<-done
	}
}

// Mounted reports whether the animator is between Start and Stop.
func (a *Animator) Mounted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mounted
}

func (a *Animator) run(ticks <-chan time.Time, resizes <-chan struct{}, quit, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		case <-resizes:
			a.HandleResize()
		case <-ticks:
			// A tick and Stop may be ready together; Stop wins.
			select {
			case <-quit:
				return
			default:
			}
			a.Tick()
			if a.afterTick != nil {
				a.afterTick()
			}
		}
	}
}

// mount sizes the surface to the viewport and seeds every column with a
// random negative head so the streams enter staggered.
func (a *Animator) mount() {
	width, height := a.viewport(0, 0)

	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.width, a.height = width, height
	a.host.Surface.Resize(width, height)
	a.heads = make([]int, ColumnCount(width))
	for i := range a.heads {
		a.heads[i] = a.rand.Intn(InitialSpread) - InitialSpread
	}
	a.ticks = 0
}

// viewport returns the current viewport size, or the fallback when the
// provider is missing or fails.
func (a *Animator) viewport(fallbackW, fallbackH int) (int, int) {
	if a.host.Viewport == nil {
		return fallbackW, fallbackH
	}
	w, h, err := a.host.Viewport()
	if err != nil {
		return fallbackW, fallbackH
	}
	return max(w, 0), max(h, 0)
}

// Tick advances the field by one frame: fade the surface, then draw and
// advance every column.
func (a *Animator) Tick() {
	s := a.host.Surface
	if s == nil {
		return
	}

	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	s.Fade(Background, FadeAlpha)
	for i, head := range a.heads {
		glyph := a.glyphs[a.rand.Intn(len(a.glyphs))]
		x := i * CellSize
		y := head * CellSize
		s.DrawGlyph(x, y, glyph, TrailGradient(y))

		if y > a.height && a.rand.Float64() > ResetThreshold {
			a.heads[i] = 0
		}
		a.heads[i]++
	}
	a.ticks++
}

// HandleResize resizes the surface to the current viewport. Heads are kept;
// columns exposed by a wider viewport start at 0, columns beyond a
// narrower one are dropped.
func (a *Animator) HandleResize() {
	s := a.host.Surface
	if s == nil {
		return
	}

	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	a.width, a.height = a.viewport(a.width, a.height)
	s.Resize(a.width, a.height)

	n := ColumnCount(a.width)
	switch {
	case n > len(a.heads):
		a.heads = append(a.heads, make([]int, n-len(a.heads))...)
	case n < len(a.heads):
		a.heads = a.heads[:n]
	}
}

// Heads returns a copy of the column head positions.
func (a *Animator) Heads() []int {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return append([]int(nil), a.heads...)
}

// Size returns the surface size the field was last laid out for.
func (a *Animator) Size() (width, height int) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.width, a.height
}

// Ticks returns the number of ticks since the last mount.
func (a *Animator) Ticks() uint64 {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.ticks
}
