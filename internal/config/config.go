package config

import "time"

// Render area limits. Larger terminals get the page centred inside a
// MaxTermWidth x MaxTermHeight area.
const (
	MaxTermWidth  = 120
	MaxTermHeight = 60
	MinTermWidth  = 40 // Below this the page shows a "terminal too small" notice
	MinTermHeight = 12
)

// Page
const (
	TitleRotation     = 3 * time.Second // Cover title rotation period
	CoverParticles    = 50
	ParticleMinPeriod = 20 * time.Second // One leg of a particle's drift
	ParticleMaxPeriod = 30 * time.Second
	ScrollHintPeriod  = 1500 * time.Millisecond
	StatsRefresh      = 10 * time.Second // Footer visit and session counts
	StatusBarRows     = 1
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)
