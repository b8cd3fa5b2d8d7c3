package systems

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lixenwraith/driftbox/constants"
	"github.com/lixenwraith/driftbox/core"
	"github.com/lixenwraith/driftbox/engine"
	"github.com/lixenwraith/driftbox/events"
	"github.com/lixenwraith/driftbox/status"
)

// HitFunc is notified after each applied wall collision. The driver
// hooks the audio cue here.
type HitFunc func(e core.Entity, wall core.Wall, hp int)

// DamageSystem consumes collision events and applies their health
// penalties. It is the sole mutator of health.
type DamageSystem struct {
	world *engine.World
	queue *events.Queue
	log   *zap.Logger
	onHit HitFunc

	applied *atomic.Int64
	hpLost  *atomic.Int64
}

func NewDamageSystem(world *engine.World, queue *events.Queue, log *zap.Logger, reg *status.Registry) *DamageSystem {
	return &DamageSystem{
		world:   world,
		queue:   queue,
		log:     log,
		applied: reg.Ints.Get("damage.applied"),
		hpLost:  reg.Ints.Get("damage.hp_lost"),
	}
}

// SetHitFunc installs the post-apply notification hook.
func (s *DamageSystem) SetHitFunc(fn HitFunc) {
	s.onHit = fn
}

// Apply dispatches one event by kind. Unknown kinds are logged and
// skipped, never silently swallowed.
func (s *DamageSystem) Apply(ev events.Event) {
	switch ev.Kind {
	case events.KindWallCollision:
		before := s.world.Health(ev.Entity)
		hp := s.world.DebitHealth(ev.Entity, constants.WallDamage)
		s.applied.Add(1)
		s.hpLost.Add(int64(before - hp))

		s.log.Info("entity hit wall",
			zap.Uint32("entity", uint32(ev.Entity)),
			zap.Stringer("wall", ev.Wall),
			zap.Int("hp", hp),
		)
		if s.onHit != nil {
			s.onHit(ev.Entity, ev.Wall, hp)
		}
	default:
		s.log.Warn("unhandled event kind", zap.Uint8("kind", uint8(ev.Kind)))
	}
}

// Drain pops without blocking until the queue reports empty, applying
// each event in FIFO order. Returns the number of events consumed; an
// empty queue is a no-op.
func (s *DamageSystem) Drain() int {
	n := 0
	for {
		ev, ok := s.queue.TryPop()
		if !ok {
			return n
		}
		s.Apply(ev)
		n++
	}
}
