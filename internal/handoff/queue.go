// Package handoff provides the bounded single-producer, single-consumer queue
// between the load and decode workers.
package handoff

import "sync"

// Item is one unit of work on the queue: either an asset payload or the
// end-of-group marker.
type Item[T any] struct {
	Value    T
	GroupEnd bool
}

// Queue is a bounded FIFO. Enqueue blocks while full and Dequeue blocks while
// empty. After SetCompleted, Dequeue drains what remains and then reports
// completion.
type Queue[T any] struct {
	ch   chan Item[T]
	once sync.Once
}

// New creates a queue holding at most capacity items. Capacities below one
// are raised to one.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan Item[T], max(capacity, 1))}
}

// Enqueue appends a payload, blocking while the queue is full.
// It must not be called after SetCompleted.
func (q *Queue[T]) Enqueue(v T) {
	q.ch <- Item[T]{Value: v}
}

// EndGroup appends the end-of-group marker, blocking while the queue is full.
func (q *Queue[T]) EndGroup() {
	q.ch <- Item[T]{GroupEnd: true}
}

// Dequeue removes the oldest item, blocking while the queue is empty.
// ok is false once the queue is completed and drained.
func (q *Queue[T]) Dequeue() (item Item[T], ok bool) {
	item, ok = <-q.ch
	return item, ok
}

// SetCompleted marks that no more items will be enqueued. It is safe to call
// more than once.
func (q *Queue[T]) SetCompleted() {
	q.once.Do(func() { close(q.ch) })
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
