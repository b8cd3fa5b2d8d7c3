package systems

import (
	"github.com/lixenwraith/driftbox/engine"
	"github.com/lixenwraith/driftbox/events"
	"github.com/lixenwraith/driftbox/status"
)

// fixture bundles the shared pieces most system tests need
type fixture struct {
	world *engine.World
	queue *events.Queue
	reg   *status.Registry
}

func newFixture(capacity, width, height int) *fixture {
	return &fixture{
		world: engine.NewWorld(capacity, width, height),
		queue: events.NewQueue(),
		reg:   status.NewRegistry(),
	}
}
