package page

import (
	"time"

	"github.com/jallerangel/portfolio/internal/input"
)

// Mode is the phase of a page session.
type Mode int

const (
	ModeBrowsing Mode = iota // Reading the page
	ModeShutdown             // Server is shutting down
)

// PageState holds per-session state (input, scroll position, timers).
// Each client has its own instance, managed by the Client.
type PageState struct {
	Input         input.Input
	Mode          Mode
	Scroll        int           // First page row on screen
	Running       bool          // Client loop running
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the inactivity warning is showing
	tooSmall      bool          // Render area below the minimum size

	// Previous frame, for full redraws on transitions
	prevMode    Mode
	wasInactive bool
	wasTooSmall bool
}

// NewPageState creates a new initialized page state.
func NewPageState() *PageState {
	return &PageState{
		Mode:    ModeBrowsing,
		Running: true,
	}
}
