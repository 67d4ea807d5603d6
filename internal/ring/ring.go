// Package ring implements the bounded single-producer/single-consumer
// queue used to move values across the real-time boundary without
// locking.
package ring

import "sync/atomic"

// Ring is a fixed-capacity SPSC ring buffer.
//
// Access discipline: exactly one goroutine may call Push and exactly one
// may call Pop. head is advanced only by the producer, tail only by the
// consumer. The classic head/tail scheme is used, so the backing array
// holds one slot more than the usable capacity; New allocates that extra
// slot so callers get the capacity they asked for.
//
// Ordering contract: each side publishes its own index with a release
// store after touching the slot, and observes the other side's index
// with an acquire load before touching the corresponding slot, so a slot
// write is always visible before the index update that announces it.
// Go's sync/atomic loads and stores are sequentially consistent, which
// satisfies (and exceeds) that contract.
type Ring[T any] struct {
	buf  []T
	head atomic.Uint64 // next slot the producer writes
	tail atomic.Uint64 // next slot the consumer reads
}

// New creates a ring with the given usable capacity (minimum 1).
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity+1)}
}

// Cap returns the usable capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf) - 1
}

// Push appends an item. Returns false, leaving the buffer unchanged, if
// the ring is full. Producer side only; never blocks, never allocates.
func (r *Ring[T]) Push(item T) bool {
	head := r.head.Load()
	next := head + 1
	if next == uint64(len(r.buf)) {
		next = 0
	}
	if next == r.tail.Load() {
		return false
	}
	r.buf[head] = item
	r.head.Store(next)
	return true
}

// Pop removes the oldest item into *item. Returns false if the ring is
// empty. Consumer side only; never blocks, never allocates.
func (r *Ring[T]) Pop(item *T) bool {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return false
	}
	*item = r.buf[tail]
	// Release the slot so pointer payloads do not outlive their stay.
	var zero T
	r.buf[tail] = zero
	next := tail + 1
	if next == uint64(len(r.buf)) {
		next = 0
	}
	r.tail.Store(next)
	return true
}

// Len returns the number of buffered items as observed at one instant.
// Exact only when called from the producer or consumer side.
func (r *Ring[T]) Len() int {
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= tail {
		return int(head - tail)
	}
	return int(head + uint64(len(r.buf)) - tail)
}

// Snapshot returns a best-effort, non-synchronized point-in-time copy of
// the buffered items, oldest first. Diagnostics only: it is not safe
// against concurrent mutation and must never sit on a correctness path.
func (r *Ring[T]) Snapshot() []T {
	tail := r.tail.Load()
	head := r.head.Load()
	out := make([]T, 0, r.Cap())
	for i := tail; i != head; {
		out = append(out, r.buf[i])
		i++
		if i == uint64(len(r.buf)) {
			i = 0
		}
	}
	return out
}
