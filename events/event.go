package events

import "github.com/lixenwraith/driftbox/core"

// Kind discriminates event payloads. Consumers dispatch on Kind with an
// exhaustive switch; payload fields are never type-inspected at runtime.
type Kind uint8

const (
	// KindWallCollision reports an entity reflected off a domain boundary
	KindWallCollision Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindWallCollision:
		return "wall_collision"
	default:
		return "unknown"
	}
}

// Event is the unit carried by the queue. Entity and Wall are payload
// and only meaningful for the kinds that set them.
type Event struct {
	Kind   Kind
	Entity core.Entity
	Wall   core.Wall
}
