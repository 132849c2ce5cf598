// Package ringbuf provides a lock-free, single-producer single-consumer (SPSC)
// ring buffer. It uses atomic operations and cache-line padding to achieve
// minimal latency with zero contention.
package ringbuf

import "sync/atomic"

// cacheLine is the typical x86-64 cache line size used for padding.
const cacheLine = 64

// Ring is a lock-free SPSC ring buffer.
// Size must be a power of two for fast bitwise modulo.
type Ring[T any] struct {
	buf  []T
	mask uint64

	// Separate cache lines to prevent false sharing between producer and consumer.
	_pad0 [cacheLine]byte
	head  atomic.Uint64 // written by producer
	_pad1 [cacheLine]byte
	tail  atomic.Uint64 // written by consumer
	_pad2 [cacheLine]byte

	// Overflow counter (atomic, for metrics)
	overflow atomic.Uint64
}

// New creates a ring buffer. capacity is rounded up to the next power of two.
// Minimum capacity is 2.
func New[T any](capacity int) *Ring[T] {
	cap := nextPow2(capacity)
	if cap < 2 {
		cap = 2
	}
	return &Ring[T]{
		buf:  make([]T, cap),
		mask: uint64(cap - 1),
	}
}

// Push appends v to the ring buffer. Returns false if the buffer is full
// (v is NOT written in that case). Non-blocking.
func (r *Ring[T]) Push(v T) bool {
	head := r.head.Load()
	tail := r.tail.Load()

	if head-tail >= uint64(len(r.buf)) {
		// Buffer full
		r.overflow.Add(1)
		return false
	}

	r.buf[head&r.mask] = v
	r.head.Store(head + 1)
	return true
}

// Pop retrieves the next value from the ring buffer.
// Returns false if the buffer is empty. Non-blocking.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	tail := r.tail.Load()
	head := r.head.Load()

	if tail >= head {
		// Buffer empty
		return zero, false
	}

	v := r.buf[tail&r.mask]
	r.buf[tail&r.mask] = zero
	r.tail.Store(tail + 1)
	return v, true
}

// Len returns the current number of items in the buffer.
func (r *Ring[T]) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Cap returns the buffer capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Overflow returns the total number of dropped pushes due to full buffer.
func (r *Ring[T]) Overflow() uint64 {
	return r.overflow.Load()
}

// KeyQueue buffers key presses between the terminal reader and the refresh
// loop. Presses beyond capacity are dropped rather than blocking the reader.
type KeyQueue struct {
	ring *Ring[string]
}

// NewKeyQueue creates a key queue holding up to capacity pending keys.
func NewKeyQueue(capacity int) *KeyQueue {
	return &KeyQueue{ring: New[string](capacity)}
}

// Push enqueues a key. Returns false when the queue is full.
func (q *KeyQueue) Push(key string) bool { return q.ring.Push(key) }

// NextKey returns the oldest pending key, or ok=false when none is queued.
func (q *KeyQueue) NextKey() (string, bool) { return q.ring.Pop() }

// Pending returns the number of queued keys.
func (q *KeyQueue) Pending() int { return q.ring.Len() }

// Dropped returns how many keys were discarded because the queue was full.
func (q *KeyQueue) Dropped() uint64 { return q.ring.Overflow() }

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
