package rain

import (
	"math/rand"
	"slices"
	"sync"
	"testing"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/jallerangel/portfolio/internal/draw"
)

// recordingSurface records every call the animator makes.
type recordingSurface struct {
	mu      sync.Mutex
	width   int
	height  int
	resizes int
	fades   []float64
	draws   []drawCall
}

type drawCall struct {
	x, y  int
	glyph rune
	g     draw.Gradient
}

func (s *recordingSurface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.resizes++
}

func (s *recordingSurface) Fade(_ colorful.Color, alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fades = append(s.fades, alpha)
}

func (s *recordingSurface) DrawGlyph(x, y int, glyph rune, g draw.Gradient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws = append(s.draws, drawCall{x: x, y: y, glyph: glyph, g: g})
}

func (s *recordingSurface) size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// viewport is a mutable fixed-size viewport provider.
type viewport struct {
	mu            sync.Mutex
	width, height int
}

func (v *viewport) set(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
}

func (v *viewport) size() (int, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height, nil
}

// fakeTicker hands out a channel the test drives by hand.
type fakeTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	period  time.Duration
	started int
	stops   int
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time, 64)}
}

func (f *fakeTicker) start(period time.Duration) (<-chan time.Time, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.period = period
	f.started++
	return f.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stops++
	}
}

func (f *fakeTicker) counts() (started, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.stops
}

// fixedFloatRand returns a constant from Float64 and real values from Intn.
type fixedFloatRand struct {
	*rand.Rand
	f float64
}

func (r fixedFloatRand) Float64() float64 { return r.f }

type fixture struct {
	surface  *recordingSurface
	viewport *viewport
	resizes  *Broadcaster
	ticker   *fakeTicker
	anim     *Animator
}

// newFixture mounts an animator on a fake ticker that never fires unless
// the test sends on it, so Tick and HandleResize can be driven directly.
func newFixture(t *testing.T, width, height int, r Rand, afterTick func()) *fixture {
	t.Helper()
	f := &fixture{
		surface:  &recordingSurface{},
		viewport: &viewport{width: width, height: height},
		resizes:  &Broadcaster{},
		ticker:   newFakeTicker(),
	}
	if r == nil {
		r = rand.New(rand.NewSource(1))
	}
	f.anim = NewAnimator(Host{
		Surface:  f.surface,
		Viewport: f.viewport.size,
		Resizes:  f.resizes,
	}, Options{Rand: r, Ticker: f.ticker.start, AfterTick: afterTick})
	f.anim.Start()
	t.Cleanup(f.anim.Stop)
	return f
}

func TestColumnCount(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{0, 1},
		{1, 1},
		{13, 1},
		{14, 1},
		{27, 1},
		{28, 2},
		{400, 28},
		{700, 50},
		{1920, 137},
	}
	for _, tt := range tests {
		if got := ColumnCount(tt.width); got != tt.want {
			t.Errorf("ColumnCount(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestColumnCountMatchesFloorForAllWidths(t *testing.T) {
	for w := 1; w <= 2000; w++ {
		want := max(1, w/14)
		if got := ColumnCount(w); got != want {
			t.Fatalf("ColumnCount(%d) = %d, want %d", w, got, want)
		}
	}
}

func TestStartSizesSurfaceAndSeedsHeads(t *testing.T) {
	f := newFixture(t, 700, 400, nil, nil)

	if w, h := f.surface.size(); w != 700 || h != 400 {
		t.Errorf("surface size = %dx%d, want 700x400", w, h)
	}
	heads := f.anim.Heads()
	if len(heads) != 50 {
		t.Fatalf("column count = %d, want 50", len(heads))
	}
	for i, h := range heads {
		if h < -InitialSpread || h >= 0 {
			t.Errorf("head[%d] = %d, want in [-100, 0)", i, h)
		}
	}
	if f.resizes.Len() != 1 {
		t.Errorf("resize listeners = %d, want 1", f.resizes.Len())
	}
	f.ticker.mu.Lock()
	period := f.ticker.period
	f.ticker.mu.Unlock()
	if period != TickPeriod {
		t.Errorf("ticker period = %v, want %v", period, TickPeriod)
	}
}

func TestTickAdvancesEveryHeadByOne(t *testing.T) {
	// Float64 never exceeds the threshold, so nothing resets
	r := fixedFloatRand{Rand: rand.New(rand.NewSource(7)), f: 0}
	f := newFixture(t, 280, 140, r, nil)

	for tick := 0; tick < 200; tick++ {
		before := f.anim.Heads()
		f.anim.Tick()
		after := f.anim.Heads()
		for i := range before {
			if after[i] != before[i]+1 {
				t.Fatalf("tick %d: head[%d] = %d, want %d", tick, i, after[i], before[i]+1)
			}
		}
	}
}

func TestTickResetsOnlyPastBottom(t *testing.T) {
	const height = 140
	// Float64 always exceeds the threshold: every column past the bottom resets
	r := fixedFloatRand{Rand: rand.New(rand.NewSource(3)), f: 0.99}
	f := newFixture(t, 280, height, r, nil)

	resets := 0
	for tick := 0; tick < 300; tick++ {
		before := f.anim.Heads()
		f.anim.Tick()
		after := f.anim.Heads()
		for i := range before {
			pastBottom := before[i]*CellSize > height
			switch {
			case pastBottom && after[i] != 1:
				t.Fatalf("tick %d: head[%d] past bottom went %d -> %d, want reset to 0 then advance to 1",
					tick, i, before[i], after[i])
			case !pastBottom && after[i] != before[i]+1:
				t.Fatalf("tick %d: head[%d] above bottom went %d -> %d, want %d",
					tick, i, before[i], after[i], before[i]+1)
			case pastBottom:
				resets++
			}
		}
	}
	if resets == 0 {
		t.Error("expected at least one reset in 300 ticks")
	}
}

func TestTickNeverResetsBelowThreshold(t *testing.T) {
	// 0.975 itself does not exceed the threshold
	r := fixedFloatRand{Rand: rand.New(rand.NewSource(3)), f: ResetThreshold}
	f := newFixture(t, 140, 28, r, nil)

	start := f.anim.Heads()
	for range 250 {
		f.anim.Tick()
	}
	for i, h := range f.anim.Heads() {
		if h != start[i]+250 {
			t.Errorf("head[%d] = %d, want %d", i, h, start[i]+250)
		}
	}
}

func TestTickDrawsOneGlyphPerColumn(t *testing.T) {
	f := newFixture(t, 700, 400, nil, nil)
	heads := f.anim.Heads()

	f.anim.Tick()

	f.surface.mu.Lock()
	defer f.surface.mu.Unlock()
	if len(f.surface.fades) != 1 || f.surface.fades[0] != FadeAlpha {
		t.Errorf("fades = %v, want one fade at %v", f.surface.fades, FadeAlpha)
	}
	if len(f.surface.draws) != len(heads) {
		t.Fatalf("draws = %d, want %d", len(f.surface.draws), len(heads))
	}
	for i, d := range f.surface.draws {
		if d.x != i*CellSize || d.y != heads[i]*CellSize {
			t.Errorf("draw %d at (%d,%d), want (%d,%d)", i, d.x, d.y, i*CellSize, heads[i]*CellSize)
		}
		if !slices.Contains(Glyphs, d.glyph) {
			t.Errorf("draw %d glyph %q not in alphabet", i, d.glyph)
		}
		if d.g.To != float64(d.y) || d.g.From != float64(d.y-CellSize*TrailCells) {
			t.Errorf("draw %d gradient spans %v..%v, want %d..%d", i, d.g.From, d.g.To, d.y-CellSize*TrailCells, d.y)
		}
	}
}

func TestScenario700x400ThirtyTicks(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	f := newFixture(t, 700, 400, r, nil)

	start := f.anim.Heads()
	if len(start) != 50 {
		t.Fatalf("column count = %d, want 50", len(start))
	}
	for range 30 {
		f.anim.Tick()
	}
	// A head starting at -1 reaches 28 on the last check (28*14 = 392 <= 400),
	// so no column can have reset
	for i, h := range f.anim.Heads() {
		if h != start[i]+30 {
			t.Errorf("head[%d] = %d, want %d", i, h, start[i]+30)
		}
	}
	if got := f.anim.Ticks(); got != 30 {
		t.Errorf("Ticks() = %d, want 30", got)
	}
}

func TestHandleResizeTracksLatestViewport(t *testing.T) {
	f := newFixture(t, 700, 400, nil, nil)

	sizes := []struct{ w, h, cols int }{
		{980, 500, 70},
		{140, 300, 10},
		{420, 200, 30},
	}
	for _, s := range sizes {
		f.viewport.set(s.w, s.h)
		f.anim.HandleResize()

		if w, h := f.surface.size(); w != s.w || h != s.h {
			t.Errorf("surface = %dx%d, want %dx%d", w, h, s.w, s.h)
		}
		if w, h := f.anim.Size(); w != s.w || h != s.h {
			t.Errorf("animator size = %dx%d, want %dx%d", w, h, s.w, s.h)
		}
		if got := len(f.anim.Heads()); got != s.cols {
			t.Errorf("columns after resize to %d = %d, want %d", s.w, got, s.cols)
		}
	}
}

func TestHandleResizeKeepsExistingHeads(t *testing.T) {
	f := newFixture(t, 700, 400, nil, nil)
	before := f.anim.Heads()

	f.viewport.set(980, 400)
	f.anim.HandleResize()
	after := f.anim.Heads()

	if len(after) != 70 {
		t.Fatalf("columns = %d, want 70", len(after))
	}
	if !slices.Equal(after[:50], before) {
		t.Error("existing heads changed on resize")
	}
	for i, h := range after[50:] {
		if h != 0 {
			t.Errorf("new column %d head = %d, want 0", 50+i, h)
		}
	}

	f.viewport.set(140, 400)
	f.anim.HandleResize()
	if got := f.anim.Heads(); !slices.Equal(got, before[:10]) {
		t.Errorf("heads after shrink = %v, want %v", got, before[:10])
	}
}

func TestResizeListenerUpdatesSurface(t *testing.T) {
	f := newFixture(t, 700, 400, nil, nil)

	for _, w := range []int{300, 500, 840} {
		f.viewport.set(w, 200)
		f.resizes.Notify()
		waitFor(t, func() bool {
			sw, sh := f.surface.size()
			return sw == w && sh == 200
		})
	}
	if got := len(f.anim.Heads()); got != 60 {
		t.Errorf("columns = %d, want 60", got)
	}
}

func TestViewportErrorKeepsSize(t *testing.T) {
	surface := &recordingSurface{}
	calls := 0
	anim := NewAnimator(Host{
		Surface: surface,
		Viewport: func() (int, int, error) {
			calls++
			if calls > 1 {
				return 0, 0, errTest
			}
			return 700, 400, nil
		},
	}, Options{Ticker: newFakeTicker().start})
	anim.Start()
	defer anim.Stop()

	anim.HandleResize()
	if w, h := anim.Size(); w != 700 || h != 400 {
		t.Errorf("size after failed viewport read = %dx%d, want 700x400", w, h)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFixture(t, 700, 400, nil, nil)

	f.anim.Stop()
	f.anim.Stop()

	if started, stops := f.ticker.counts(); started != 1 || stops != 1 {
		t.Errorf("ticker started %d stopped %d, want 1 and 1", started, stops)
	}
	if f.resizes.Len() != 0 {
		t.Errorf("resize listeners after stop = %d, want 0", f.resizes.Len())
	}
	if f.anim.Mounted() {
		t.Error("animator still mounted after Stop")
	}
}

// orderedNotifier records listener removal into a shared teardown log.
type orderedNotifier struct {
	log *[]string
}

func (n orderedNotifier) AddListener(func()) func() {
	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		*n.log = append(*n.log, "listener")
	}
}

func TestStopCancelsTickerBeforeListener(t *testing.T) {
	var teardown []string
	ticker := func(time.Duration) (<-chan time.Time, func()) {
		stopped := false
		return make(chan time.Time), func() {
			if stopped {
				return
			}
			stopped = true
			teardown = append(teardown, "ticker")
		}
	}
	v := &viewport{width: 700, height: 400}
	anim := NewAnimator(Host{
		Surface:  &recordingSurface{},
		Viewport: v.size,
		Resizes:  orderedNotifier{log: &teardown},
	}, Options{Ticker: ticker})

	anim.Start()
	anim.Stop()
	want := []string{"ticker", "listener"}
	if !slices.Equal(teardown, want) {
		t.Fatalf("teardown order = %v, want %v", teardown, want)
	}

	anim.Stop()
	if !slices.Equal(teardown, want) {
		t.Errorf("second Stop changed teardown to %v", teardown)
	}
}

func TestStopBeforeStartAndWithoutSurface(t *testing.T) {
	ticker := newFakeTicker()
	anim := NewAnimator(Host{}, Options{Ticker: ticker.start})
	anim.Stop()

	anim.Start()
	if !anim.Mounted() {
		t.Error("animator without surface should still report mounted")
	}
	anim.Tick()
	anim.HandleResize()
	anim.Stop()
	anim.Stop()

	if started, _ := ticker.counts(); started != 0 {
		t.Errorf("ticker started %d times without a surface, want 0", started)
	}
	if anim.Mounted() {
		t.Error("animator still mounted after Stop")
	}
}

func TestTickerDrivesTicksUntilStop(t *testing.T) {
	done := make(chan struct{}, 64)
	f := newFixture(t, 700, 400, nil, func() { done <- struct{}{} })

	const n = 10
	for range n {
		f.ticker.ch <- time.Now()
	}
	for i := range n {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d ticks handled", i, n)
		}
	}
	if got := f.anim.Ticks(); got != n {
		t.Errorf("Ticks() = %d, want %d", got, n)
	}

	f.anim.Stop()
	for range 5 {
		f.ticker.ch <- time.Now()
	}
	time.Sleep(20 * time.Millisecond)
	if got := f.anim.Ticks(); got != n {
		t.Errorf("Ticks() after Stop = %d, want %d", got, n)
	}
}

func TestRealTimerRate(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	anim := NewAnimator(Host{
		Surface:  &recordingSurface{},
		Viewport: func() (int, int, error) { return 140, 140, nil },
	}, Options{})
	anim.Start()

	time.Sleep(10*TickPeriod + TickPeriod/2)
	anim.Stop()

	got := anim.Ticks()
	if got < 6 || got > 11 {
		t.Errorf("ticks over 10 periods = %d, want about 10", got)
	}

	time.Sleep(3 * TickPeriod)
	if after := anim.Ticks(); after != got {
		t.Errorf("ticks grew from %d to %d after Stop", got, after)
	}
}

func TestRestartReseeds(t *testing.T) {
	f := newFixture(t, 700, 400, nil, nil)
	for range 5 {
		f.anim.Tick()
	}
	f.anim.Stop()
	f.anim.Start()

	if got := f.anim.Ticks(); got != 0 {
		t.Errorf("Ticks() after remount = %d, want 0", got)
	}
	for i, h := range f.anim.Heads() {
		if h >= 0 {
			t.Errorf("head[%d] = %d after remount, want negative", i, h)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("viewport unavailable")
