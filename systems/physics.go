package systems

import (
	"sync/atomic"

	"github.com/lixenwraith/driftbox/core"
	"github.com/lixenwraith/driftbox/engine"
	"github.com/lixenwraith/driftbox/events"
	"github.com/lixenwraith/driftbox/status"
)

// PhysicsSystem advances every active entity by one fixed step unit per
// call and reflects movers off the domain walls
// It is the sole writer of the unpublished transform buffer and of the
// velocity array; each completed pass ends with exactly one publish
type PhysicsSystem struct {
	world *engine.World
	queue *events.Queue

	steps      *atomic.Int64
	collisions *atomic.Int64
	pushed     *atomic.Int64
	dropped    *atomic.Int64
}

// NewPhysicsSystem creates the stepper and caches its counter pointers
func NewPhysicsSystem(world *engine.World, queue *events.Queue, reg *status.Registry) *PhysicsSystem {
	return &PhysicsSystem{
		world:      world,
		queue:      queue,
		steps:      reg.Ints.Get("physics.steps"),
		collisions: reg.Ints.Get("physics.collisions"),
		pushed:     reg.Ints.Get("events.pushed"),
		dropped:    reg.Ints.Get("events.dropped"),
	}
}

// Step computes next positions into the back buffer and publishes it.
// Zero-velocity entities still get their position copied so the back
// buffer never carries data from two steps ago. Publication is batch:
// no reader can observe a half-updated buffer.
func (s *PhysicsSystem) Step() {
	cur := s.world.PublishedIndex()
	back := 1 - cur

	// A collector that pinned the back buffer before the previous
	// publish may still be reading it; wait it out before writing
	s.world.AwaitWritable(back)

	src := s.world.Transforms(cur)
	dst := s.world.Transforms(back)
	vel := s.world.Velocities()
	maxX, maxY := s.world.Bounds()

	s.world.EachActive(func(e core.Entity) {
		i := int(e)
		tr := src[i]
		v := vel[i]

		if v.VX != 0 || v.VY != 0 {
			tr.X += v.VX
			tr.Y += v.VY

			// Axis-aligned reflection: clamp, flip the component,
			// queue one event per violated axis
			if tr.X < 0 {
				tr.X = 0
				v.VX = -v.VX
				s.emit(e, core.WallLeft)
			} else if tr.X > maxX {
				tr.X = maxX
				v.VX = -v.VX
				s.emit(e, core.WallRight)
			}
			if tr.Y < 0 {
				tr.Y = 0
				v.VY = -v.VY
				s.emit(e, core.WallTop)
			} else if tr.Y > maxY {
				tr.Y = maxY
				v.VY = -v.VY
				s.emit(e, core.WallBottom)
			}
			vel[i] = v
		}
		dst[i] = tr
	})

	s.world.Publish(back)
	s.steps.Add(1)
}

func (s *PhysicsSystem) emit(e core.Entity, wall core.Wall) {
	s.collisions.Add(1)
	ok := s.queue.Push(events.Event{
		Kind:   events.KindWallCollision,
		Entity: e,
		Wall:   wall,
	})
	if ok {
		s.pushed.Add(1)
	} else {
		s.dropped.Add(1)
	}
}
