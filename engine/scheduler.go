package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/driftbox/constants"
	"github.com/lixenwraith/driftbox/core"
	"github.com/lixenwraith/driftbox/events"
	"github.com/lixenwraith/driftbox/render"
	"github.com/lixenwraith/driftbox/status"
)

// Stepper advances the simulation by one fixed step.
type Stepper interface {
	Step()
}

// Collector snapshots the world into a drawable frame.
type Collector interface {
	Collect() render.Frame
}

// Resolver consumes queued events and applies their effects.
type Resolver interface {
	Apply(events.Event)
	Drain() int
}

// Policy selects how the workers are paced.
type Policy uint8

const (
	// PolicyLockstep sequences physics, event drain and render through
	// a coordinator with request/ack handoff on every tick
	PolicyLockstep Policy = iota

	// PolicyFreeRun lets each worker tick on its own cadence, relying
	// on the publish protocol plus the world's reader pins for
	// correctness. No coordinator backpressure: a fast worker may lap
	// a slow one; a stepper that laps an in-flight collection waits
	// only for that buffer's pin to clear
	PolicyFreeRun
)

func (p Policy) String() string {
	switch p {
	case PolicyLockstep:
		return "lockstep"
	case PolicyFreeRun:
		return "freerun"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a config string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "lockstep":
		return PolicyLockstep, nil
	case "freerun":
		return PolicyFreeRun, nil
	default:
		return 0, fmt.Errorf("unknown scheduler policy %q", s)
	}
}

// SchedulerConfig wires a Scheduler's collaborators and cadences.
// Zero intervals fall back to the package defaults.
type SchedulerConfig struct {
	Policy        Policy
	StepInterval  time.Duration
	FrameInterval time.Duration

	Stepper   Stepper
	Collector Collector
	Resolver  Resolver
	Queue     *events.Queue
	Sink      render.Sink
	Registry  *status.Registry
	Log       *zap.Logger
}

// Scheduler owns the worker goroutines and the coordination state they
// share: the stop channel, the run flag and the join group
// Pacing is ticker-driven on the monotonic clock; a tick that arrives
// while a worker is still busy is dropped by the ticker, not queued
// Shutdown contract: Stop clears the run flag, closes the stop channel
// (a closed channel wakes every selector, the broadcast analogue for
// goroutines), closes the event queue to release a blocked WaitPop,
// then joins all workers before returning
// A Scheduler is one-shot: create a new one per run
type Scheduler struct {
	policy        Policy
	stepInterval  time.Duration
	frameInterval time.Duration

	stepper   Stepper
	collector Collector
	resolver  Resolver
	queue     *events.Queue
	sink      render.Sink
	log       *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	// Lockstep handoff channels; done channels are buffered so a
	// worker's ack never blocks against a stopping coordinator
	physReq    chan struct{}
	physDone   chan struct{}
	renderReq  chan struct{}
	renderDone chan struct{}

	startTime time.Time
	steps     *atomic.Int64
	frames    *atomic.Int64
	drained   *atomic.Int64
	stepRate  *status.AtomicFloat
	frameRate *status.AtomicFloat
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = constants.StepInterval
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = constants.FrameInterval
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	return &Scheduler{
		policy:        cfg.Policy,
		stepInterval:  cfg.StepInterval,
		frameInterval: cfg.FrameInterval,
		stepper:       cfg.Stepper,
		collector:     cfg.Collector,
		resolver:      cfg.Resolver,
		queue:         cfg.Queue,
		sink:          cfg.Sink,
		log:           cfg.Log,
		stopChan:      make(chan struct{}),
		physReq:       make(chan struct{}),
		physDone:      make(chan struct{}, 1),
		renderReq:     make(chan struct{}),
		renderDone:    make(chan struct{}, 1),
		steps:         cfg.Registry.Ints.Get("physics.steps"),
		frames:        cfg.Registry.Ints.Get("render.frames"),
		drained:       cfg.Registry.Ints.Get("damage.applied"),
		stepRate:      cfg.Registry.Floats.Get("physics.rate_hz"),
		frameRate:     cfg.Registry.Floats.Get("render.rate_hz"),
	}
}

// Running reports whether the workers are live.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Start launches the configured policy's workers. Calling Start twice
// is a no-op.
func (s *Scheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.startTime = time.Now()
	s.log.Info("scheduler starting",
		zap.Stringer("policy", s.policy),
		zap.Duration("step_interval", s.stepInterval),
		zap.Duration("frame_interval", s.frameInterval),
	)

	s.wg.Add(3)
	switch s.policy {
	case PolicyLockstep:
		core.Go(s.physicsWorker)
		core.Go(s.renderWorker)
		core.Go(s.coordinatorLoop)
	default:
		core.Go(s.freePhysicsLoop)
		core.Go(s.freeRenderLoop)
		core.Go(s.damageLoop)
	}
}

// Stop halts every worker and joins them. Safe to call from any
// goroutine and more than once; returns only when all workers have
// reached terminal state.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		close(s.stopChan)
		s.queue.Close()
		s.wg.Wait()

		// Consume anything the workers had not popped before the stop,
		// so no event is abandoned in the closed queue
		s.resolver.Drain()

		elapsed := time.Since(s.startTime)
		if sec := elapsed.Seconds(); sec > 0 {
			s.stepRate.Set(float64(s.steps.Load()) / sec)
			s.frameRate.Set(float64(s.frames.Load()) / sec)
		}
		s.log.Info("scheduler stopped",
			zap.Stringer("policy", s.policy),
			zap.Duration("elapsed", elapsed),
			zap.Int64("steps", s.steps.Load()),
			zap.Int64("frames", s.frames.Load()),
			zap.Int64("events_applied", s.drained.Load()),
		)
	})
}

// coordinatorLoop drives the lockstep policy. Each tick runs exactly
// one physics step, confines the event drain between physics and
// render, then runs exactly one collection. The unbuffered request
// channels make every handoff a rendezvous: no tick can double-request
// a worker that has not acked the previous one.
func (s *Scheduler) coordinatorLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.stepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			select {
			case s.physReq <- struct{}{}:
			case <-s.stopChan:
				return
			}
			select {
			case <-s.physDone:
			case <-s.stopChan:
				return
			}

			// Damage runs strictly between the phases, so health
			// mutation never overlaps a collection
			s.resolver.Drain()

			select {
			case s.renderReq <- struct{}{}:
			case <-s.stopChan:
				return
			}
			select {
			case <-s.renderDone:
			case <-s.stopChan:
				return
			}
		}
	}
}

// physicsWorker waits for a request, runs one step, acks. Idle between
// requests; checks the stop channel before and while blocking.
func (s *Scheduler) physicsWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		case <-s.physReq:
			s.stepper.Step()
			s.physDone <- struct{}{}
		}
	}
}

// renderWorker waits for a request, collects and presents one frame,
// acks.
func (s *Scheduler) renderWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		case <-s.renderReq:
			s.present()
			s.renderDone <- struct{}{}
		}
	}
}

// freePhysicsLoop steps on its own ticker, no handoff.
func (s *Scheduler) freePhysicsLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.stepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.stepper.Step()
		}
	}
}

// freeRenderLoop collects and presents on its own ticker.
func (s *Scheduler) freeRenderLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.present()
		}
	}
}

// damageLoop blocks on the queue between events; the queue close
// issued by Stop is its broadcast wake. Events still pending at close
// are drained before the worker exits, so shutdown loses nothing.
func (s *Scheduler) damageLoop() {
	defer s.wg.Done()

	for {
		ev, ok := s.queue.WaitPop()
		if !ok {
			return
		}
		s.resolver.Apply(ev)
	}
}

func (s *Scheduler) present() {
	frame := s.collector.Collect()
	if err := s.sink.Present(frame); err != nil {
		s.log.Error("present failed", zap.Error(err))
	}
}
