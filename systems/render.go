package systems

import (
	"sync/atomic"

	"github.com/lixenwraith/driftbox/core"
	"github.com/lixenwraith/driftbox/engine"
	"github.com/lixenwraith/driftbox/render"
	"github.com/lixenwraith/driftbox/status"
)

// RenderSystem snapshots the published transform buffer into a drawable
// frame. Read-only: it never mutates the world and never waits for the
// stepper.
type RenderSystem struct {
	world  *engine.World
	frames *atomic.Int64
}

func NewRenderSystem(world *engine.World, reg *status.Registry) *RenderSystem {
	return &RenderSystem{
		world:  world,
		frames: reg.Ints.Get("render.frames"),
	}
}

// Collect pins the published buffer for the duration of the call and
// reads only that buffer. A publish racing mid-collection cannot
// retarget the read: the pinned index keeps this call on its
// stale-but-consistent snapshot, and the pin stops a free-running
// stepper from recycling the buffer as its back buffer mid-read.
// Entities without a symbol are skipped for drawing but still report
// health.
func (s *RenderSystem) Collect() render.Frame {
	idx := s.world.BeginRead()
	defer s.world.EndRead(idx)
	src := s.world.Transforms(idx)

	frame := render.Frame{
		Seq:     uint64(s.frames.Add(1)),
		Entries: make([]render.DrawEntry, 0, s.world.Count()),
		Healths: make([]render.HealthEntry, 0, s.world.Count()),
	}

	s.world.EachActive(func(e core.Entity) {
		i := int(e)
		if sym := s.world.Symbol(e); sym != engine.SymbolNone {
			frame.Entries = append(frame.Entries, render.DrawEntry{
				Symbol: sym,
				X:      int(src[i].X), // truncation is the draw policy
				Y:      int(src[i].Y),
			})
		}
		frame.Healths = append(frame.Healths, render.HealthEntry{
			Entity: e,
			HP:     s.world.Health(e),
		})
	})
	return frame
}
