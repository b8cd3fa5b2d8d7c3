package constants

import "time"

// Simulation Domain
const (
	// GridWidth is the playfield width in cells, x valid in [0, GridWidth-1]
	GridWidth = 80

	// GridHeight is the playfield height in cells, y valid in [0, GridHeight-1]
	GridHeight = 25

	// MaxEntities is the hard slot limit for the component arrays
	MaxEntities = 1000
)

// Loop Timing
const (
	// StepInterval is the fixed physics cadence (~60 steps per second)
	StepInterval = 16 * time.Millisecond

	// FrameInterval is the render collection cadence
	FrameInterval = 16 * time.Millisecond

	// DefaultRunDuration bounds an unattended run
	DefaultRunDuration = 10 * time.Second
)

// Gameplay Defaults
const (
	// DefaultHealth is the health a spawned entity starts with unless seeded
	DefaultHealth = 100

	// WallDamage is the health penalty per wall collision event
	WallDamage = 10
)
