// Package queue implements a persistent (immutable) FIFO queue.
//
// Every operation returns a new Queue and leaves the receiver untouched, so
// old handles stay valid after enqueue and dequeue. The representation is the
// classic two-list banker's queue: amortised O(1) per operation.
package queue

import "errors"

// ErrEmptyQueue is returned by Dequeue on an empty queue.
var ErrEmptyQueue = errors.New("empty queue")

// list is an immutable cons list.
type list[E any] struct {
	head E
	tail *list[E]
}

func (l *list[E]) push(e E) *list[E] {
	return &list[E]{head: e, tail: l}
}

func (l *list[E]) reverse() *list[E] {
	var out *list[E]
	for n := l; n != nil; n = n.tail {
		out = out.push(n.head)
	}
	return out
}

// Queue is a persistent FIFO. The zero value is an empty queue.
//
// Thread-safety: a Queue value is immutable and safe to share between
// goroutines. Publishing a new handle is the caller's responsibility.
type Queue[E any] struct {
	front *list[E]
	back  *list[E]
	size  int
}

// Empty returns an empty queue.
func Empty[E any]() Queue[E] {
	return Queue[E]{}
}

// Of returns a queue holding elems in order.
func Of[E any](elems ...E) Queue[E] {
	q := Empty[E]()
	for _, e := range elems {
		q = q.Enqueue(e)
	}
	return q
}

// Enqueue returns a queue with e appended at the back.
func (q Queue[E]) Enqueue(e E) Queue[E] {
	return Queue[E]{front: q.front, back: q.back.push(e), size: q.size + 1}
}

// Dequeue returns the front element and the remaining queue.
// Returns ErrEmptyQueue if q is empty.
func (q Queue[E]) Dequeue() (E, Queue[E], error) {
	front, back := q.front, q.back
	if front == nil {
		front, back = back.reverse(), nil
	}
	if front == nil {
		var zero E
		return zero, q, ErrEmptyQueue
	}
	return front.head, Queue[E]{front: front.tail, back: back, size: q.size - 1}, nil
}

// IsEmpty reports whether q holds no elements.
func (q Queue[E]) IsEmpty() bool {
	return q.size == 0
}

// Len returns the number of elements in q.
func (q Queue[E]) Len() int {
	return q.size
}
