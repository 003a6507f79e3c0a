package engine

import (
	"sync"

	"github.com/roach88/multistore/internal/queue"
)

// round is one unit of work on the round queue.
type round func()

// roundQueue runs rounds one at a time in FIFO order.
//
// There is no long-lived worker: the first push into an idle queue starts a
// drain goroutine, which runs rounds until the queue is empty and then exits.
// At most one drain goroutine exists at any time, so rounds never overlap.
//
// Thread-safety: push and len may be called from any goroutine, including
// from inside a running round.
type roundQueue struct {
	mu      sync.Mutex
	pending queue.Queue[round]
	running bool
}

func newRoundQueue() *roundQueue {
	return &roundQueue{}
}

// push appends r and starts the drain goroutine if the queue was idle.
func (q *roundQueue) push(r round) {
	q.mu.Lock()
	q.pending = q.pending.Enqueue(r)
	start := !q.running
	q.running = true
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

func (q *roundQueue) drain() {
	for {
		q.mu.Lock()
		r, rest, err := q.pending.Dequeue()
		if err != nil {
			// CRITICAL: clear running under the same lock that observed the
			// empty queue, or a concurrent push could be stranded.
			q.running = false
			q.mu.Unlock()
			return
		}
		q.pending = rest
		q.mu.Unlock()

		r()
	}
}

// len returns the number of rounds waiting to run, excluding a running one.
func (q *roundQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}
