package render

import "github.com/lixenwraith/driftbox/core"

// DrawEntry is one drawable cell: a glyph at truncated integer
// coordinates inside the domain.
type DrawEntry struct {
	Symbol rune
	X, Y   int
}

// HealthEntry pairs an entity with its health at collection time.
type HealthEntry struct {
	Entity core.Entity
	HP     int
}

// Frame is one collected world snapshot handed to a sink.
type Frame struct {
	Seq     uint64
	Entries []DrawEntry
	Healths []HealthEntry
}

// Sink consumes frames. Implementations own all presentation I/O; the
// collector only produces data and never draws.
type Sink interface {
	Present(Frame) error
	Close()
}
