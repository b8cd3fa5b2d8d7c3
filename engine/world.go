package engine

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/driftbox/constants"
	"github.com/lixenwraith/driftbox/core"
)

// Transform is positional state inside the fixed rectangular domain
type Transform struct {
	X, Y float64
}

// Velocity is per-step displacement, integrated once per physics step
type Velocity struct {
	VX, VY float64
}

// SymbolNone marks a slot that is not drawn
const SymbolNone rune = 0

// Seed is the full component set for spawning one entity
type Seed struct {
	X, Y   float64
	VX, VY float64
	Symbol rune
	Health int32
}

// World is the fixed-capacity component store shared by the physics,
// render and damage goroutines
// Thread-Safety:
//   - Transforms are double buffered. The stepper owns the buffer
//     1-published and writes it freely; readers only dereference an
//     index captured from PublishedIndex, so no buffer is ever read
//     and written concurrently
//   - Publish is a release store, PublishedIndex an acquire load: all
//     back-buffer writes happen-before any read through the new index
//   - A collector that may overlap a step pins its buffer with
//     BeginRead/EndRead; the stepper's AwaitWritable holds the next
//     write until every pin on that buffer is released
//   - symbols, healths and active are per-slot atomics with a single
//     writer each (spawner before activation, damage resolver for
//     health), readable by anyone at any time
//   - velocities are touched by the spawner before activation and by
//     the stepper after, never concurrently
type World struct {
	width    int
	height   int
	capacity int

	transforms [2][]Transform
	velocities []Velocity
	symbols    []atomic.Int32
	healths    []atomic.Int32
	active     []atomic.Bool

	published atomic.Int32
	readers   [2]atomic.Int32

	spawnMu sync.Mutex
	count   atomic.Int32
}

// NewWorld pre-sizes every component array to capacity with all slots
// inactive. The published index starts at buffer 0.
func NewWorld(capacity, width, height int) *World {
	w := &World{
		width:      width,
		height:     height,
		capacity:   capacity,
		velocities: make([]Velocity, capacity),
		symbols:    make([]atomic.Int32, capacity),
		healths:    make([]atomic.Int32, capacity),
		active:     make([]atomic.Bool, capacity),
	}
	w.transforms[0] = make([]Transform, capacity)
	w.transforms[1] = make([]Transform, capacity)
	return w
}

func (w *World) Capacity() int { return w.capacity }
func (w *World) Width() int    { return w.width }
func (w *World) Height() int   { return w.height }

// Bounds returns the inclusive domain maxima for reflection and clamping.
func (w *World) Bounds() (maxX, maxY float64) {
	return float64(w.width - 1), float64(w.height - 1)
}

// Transforms exposes one transform buffer by explicit index. Callers
// must respect the publish protocol: only the stepper may touch the
// unpublished buffer, and only an index captured from PublishedIndex
// may be read.
func (w *World) Transforms(idx int) []Transform {
	return w.transforms[idx]
}

// Velocities exposes the velocity array. Owned by the stepper once an
// entity is active.
func (w *World) Velocities() []Velocity {
	return w.velocities
}

// PublishedIndex returns the currently readable buffer index (acquire).
func (w *World) PublishedIndex() int {
	return int(w.published.Load())
}

// Publish makes idx the readable buffer (release). This is the only
// way the published index changes; the stepper calls it exactly once
// per completed step, after the full back-buffer pass.
func (w *World) Publish(idx int) {
	w.published.Store(int32(idx))
}

// BeginRead pins the published buffer against reuse by the stepper and
// returns its index. If a publish lands between the index load and the
// pin, the pinned buffer may already be the stepper's next back buffer,
// so the pin is dropped and the load retried. A publish takes a full
// step, so in practice one retry settles it.
// Every BeginRead must be paired with an EndRead of the returned index.
func (w *World) BeginRead() int {
	for {
		idx := int(w.published.Load())
		w.readers[idx].Add(1)
		if int(w.published.Load()) == idx {
			return idx
		}
		w.readers[idx].Add(-1)
	}
}

// EndRead releases a pin taken by BeginRead.
func (w *World) EndRead(idx int) {
	w.readers[idx].Add(-1)
}

// AwaitWritable blocks until no reader still pins buffer idx. The
// stepper calls it before touching the back buffer; the wait is bounded
// by one in-flight collection.
func (w *World) AwaitWritable(idx int) {
	for w.readers[idx].Load() != 0 {
		runtime.Gosched()
	}
}

// CreateEntity allocates the next free slot with default components:
// origin position, zero velocity, no symbol, full health.
func (w *World) CreateEntity() (core.Entity, error) {
	return w.Spawn(Seed{Health: constants.DefaultHealth})
}

// Spawn allocates a free slot by linear scan, seeds every component,
// then activates the slot. Activation is the last store so a concurrent
// reader that observes the flag sees a fully initialized entity.
// Returns core.ErrCapacityExceeded when all slots are in use.
func (w *World) Spawn(seed Seed) (core.Entity, error) {
	w.spawnMu.Lock()
	defer w.spawnMu.Unlock()

	slot := -1
	for i := 0; i < w.capacity; i++ {
		if !w.active[i].Load() {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, core.ErrCapacityExceeded
	}

	w.transforms[0][slot] = Transform{X: seed.X, Y: seed.Y}
	w.transforms[1][slot] = Transform{X: seed.X, Y: seed.Y}
	w.velocities[slot] = Velocity{VX: seed.VX, VY: seed.VY}
	w.symbols[slot].Store(int32(seed.Symbol))
	w.healths[slot].Store(seed.Health)

	w.active[slot].Store(true) // MUST be the last store
	w.count.Add(1)
	return core.Entity(slot), nil
}

// Alive reports whether the slot holds an activated entity.
func (w *World) Alive(e core.Entity) bool {
	return w.active[e].Load()
}

// Count reports the number of activated entities.
func (w *World) Count() int {
	return int(w.count.Load())
}

// Symbol returns the entity's glyph, SymbolNone if it is not drawn.
func (w *World) Symbol(e core.Entity) rune {
	return rune(w.symbols[e].Load())
}

// Health returns the entity's current health.
func (w *World) Health(e core.Entity) int {
	return int(w.healths[e].Load())
}

// DebitHealth subtracts amount from the entity's health, floored at 0,
// and returns the new value. The damage resolver is the sole caller;
// the CAS loop keeps the floor invariant even so.
func (w *World) DebitHealth(e core.Entity, amount int32) int {
	for {
		cur := w.healths[e].Load()
		next := cur - amount
		if next < 0 {
			next = 0
		}
		if w.healths[e].CompareAndSwap(cur, next) {
			return int(next)
		}
	}
}

// EachActive calls fn for every activated entity in slot order.
func (w *World) EachActive(fn func(core.Entity)) {
	n := int(w.count.Load())
	seen := 0
	for i := 0; i < w.capacity && seen < n; i++ {
		if w.active[i].Load() {
			seen++
			fn(core.Entity(i))
		}
	}
}
