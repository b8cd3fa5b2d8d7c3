package systems

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/driftbox/engine"
	"github.com/lixenwraith/driftbox/render"
)

func newIntegrationScheduler(f *fixture, policy engine.Policy, sink render.Sink) *engine.Scheduler {
	return engine.NewScheduler(engine.SchedulerConfig{
		Policy:        policy,
		StepInterval:  2 * time.Millisecond,
		FrameInterval: 2 * time.Millisecond,
		Stepper:       NewPhysicsSystem(f.world, f.queue, f.reg),
		Collector:     NewRenderSystem(f.world, f.reg),
		Resolver:      NewDamageSystem(f.world, f.queue, zap.NewNop(), f.reg),
		Queue:         f.queue,
		Sink:          sink,
		Registry:      f.reg,
	})
}

// TestSimulationLockstepRun wires the real systems under the lockstep
// scheduler: the run must step, render, drain every event and keep the
// damage books balanced
func TestSimulationLockstepRun(t *testing.T) {
	f := newFixture(16, 80, 25)
	f.world.Spawn(engine.Seed{X: 40, Y: 12, VX: 0.5, VY: 0.2, Symbol: '@', Health: 100})
	f.world.Spawn(engine.Seed{X: 10, Y: 5, VX: -0.3, VY: 0.1, Symbol: 'M', Health: 50})

	var out bytes.Buffer
	s := newIntegrationScheduler(f, engine.PolicyLockstep, render.NewWriter(&out, 80, 25))

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	steps := f.reg.Ints.Get("physics.steps").Load()
	frames := f.reg.Ints.Get("render.frames").Load()
	if steps == 0 || frames == 0 {
		t.Fatalf("Expected live workers, got steps=%d frames=%d", steps, frames)
	}

	if !f.queue.Empty() {
		t.Errorf("Expected Stop to leave the queue drained, %d left", f.queue.Len())
	}
	applied := f.reg.Ints.Get("damage.applied").Load()
	pushed := f.reg.Ints.Get("events.pushed").Load()
	if applied != pushed {
		t.Errorf("Expected every pushed event applied: pushed=%d applied=%d", pushed, applied)
	}
	if hpLost := f.reg.Ints.Get("damage.hp_lost").Load(); hpLost != applied*10 {
		t.Errorf("Expected 10 hp per applied event, lost %d over %d events", hpLost, applied)
	}

	if !strings.Contains(out.String(), strings.Repeat("-", 80)) {
		t.Error("Expected separator row in presented output")
	}
	if !strings.Contains(out.String(), "[Entity 0] HP:") {
		t.Error("Expected health line in presented output")
	}
}

// TestSimulationFreeRunRun wires the real systems under free-running
// tickers with the blocking damage worker
func TestSimulationFreeRunRun(t *testing.T) {
	f := newFixture(16, 80, 25)
	f.world.Spawn(engine.Seed{X: 40, Y: 12, VX: 0.5, VY: 0.2, Symbol: '@', Health: 100})
	f.world.Spawn(engine.Seed{X: 10, Y: 5, VX: -0.3, VY: 0.1, Symbol: 'M', Health: 50})

	var out bytes.Buffer
	s := newIntegrationScheduler(f, engine.PolicyFreeRun, render.NewWriter(&out, 80, 25))

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if steps := f.reg.Ints.Get("physics.steps").Load(); steps == 0 {
		t.Error("Expected free-running physics to step")
	}
	if frames := f.reg.Ints.Get("render.frames").Load(); frames == 0 {
		t.Error("Expected free-running render to collect")
	}
	if !f.queue.Empty() {
		t.Errorf("Expected no pending events after Stop, %d left", f.queue.Len())
	}

	applied := f.reg.Ints.Get("damage.applied").Load()
	pushed := f.reg.Ints.Get("events.pushed").Load()
	if applied != pushed {
		t.Errorf("Expected blocking worker to consume all events: pushed=%d applied=%d", pushed, applied)
	}
	if !strings.Contains(out.String(), "@") {
		t.Error("Expected the player glyph in presented output")
	}
}
