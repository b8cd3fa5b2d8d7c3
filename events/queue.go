package events

import "sync"

// Queue is an unbounded FIFO shared by producers and consumers on
// different goroutines
// Thread-Safety:
//   - All operations serialize on one mutex, any number of producers
//     and consumers
//   - Pops observe events in exact push order
//   - Nothing queued is ever dropped: Push refuses (returns false) once
//     the queue is closed instead of losing events silently
//
// Blocking: WaitPop parks on a condition variable; Push signals one
// waiter, Close broadcasts so no consumer sleeps through shutdown
type Queue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	buf    []Event
	head   int // consumed prefix of buf
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// Push appends ev and wakes one blocked consumer.
// Reports false if the queue is already closed.
func (q *Queue) Push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.buf = append(q.buf, ev)
	q.ready.Signal()
	return true
}

// TryPop removes and returns the oldest event without blocking.
// Reports false when the queue is empty.
func (q *Queue) TryPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf) == q.head {
		return Event{}, false
	}
	return q.popLocked(), true
}

// WaitPop blocks until an event is available or the queue is closed and
// drained. The loop re-checks its predicate after every wake, so spurious
// wakeups are harmless. Reports false only on closed-and-drained.
func (q *Queue) WaitPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.buf) == q.head && !q.closed {
		q.ready.Wait()
	}
	if len(q.buf) == q.head {
		return Event{}, false
	}
	return q.popLocked(), true
}

// Close marks the queue closed and wakes every blocked consumer.
// Events already queued remain poppable; further pushes are refused.
// Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.ready.Broadcast()
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf) - q.head
}

// Empty reports whether no events are pending.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// popLocked removes the head event. Caller holds mu and has checked
// the queue is non-empty.
func (q *Queue) popLocked() Event {
	ev := q.buf[q.head]
	q.buf[q.head] = Event{} // release for GC
	q.head++

	// Reclaim the consumed prefix once it dominates the buffer, so a
	// long-lived queue does not grow without bound
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.buf) {
		n := copy(q.buf, q.buf[q.head:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	return ev
}
