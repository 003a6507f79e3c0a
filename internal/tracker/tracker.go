// Package tracker correlates keys with futures whose values arrive later.
//
// A caller asks for a future by key with WaitFor before the value is known;
// whoever learns the value settles it with Resolve or Reject. Once settled the
// key is forgotten, so the same key may be tracked again afterwards.
package tracker

import (
	"fmt"
	"sync"

	"github.com/roach88/multistore/internal/future"
)

type entry[V any] struct {
	future  *future.Future[V]
	resolve func(V)
	reject  func(error)
}

// Tracker maps keys to pending futures.
//
// Thread-safety: all methods are safe for concurrent use.
type Tracker[K comparable, V any] struct {
	mu      sync.Mutex
	pending map[K]entry[V]
}

// New creates an empty Tracker.
func New[K comparable, V any]() *Tracker[K, V] {
	return &Tracker[K, V]{pending: make(map[K]entry[V])}
}

// WaitFor creates and returns the future tracked under key.
// Returns an error if key is already pending.
func (t *Tracker[K, V]) WaitFor(key K) (*future.Future[V], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[key]; ok {
		return nil, fmt.Errorf("key %v is already tracked", key)
	}

	f, resolve, reject := future.New[V]()
	t.pending[key] = entry[V]{future: f, resolve: resolve, reject: reject}
	return f, nil
}

// Resolve settles the future for key with v.
// Returns an error if key is not pending.
func (t *Tracker[K, V]) Resolve(key K, v V) error {
	e, err := t.take(key)
	if err != nil {
		return err
	}
	e.resolve(v)
	return nil
}

// Reject settles the future for key with err.
// Returns an error if key is not pending.
func (t *Tracker[K, V]) Reject(key K, cause error) error {
	e, err := t.take(key)
	if err != nil {
		return err
	}
	e.reject(cause)
	return nil
}

// Pending returns the number of unsettled keys.
func (t *Tracker[K, V]) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tracker[K, V]) take(key K) (entry[V], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.pending[key]
	if !ok {
		return entry[V]{}, fmt.Errorf("key %v is not tracked", key)
	}
	delete(t.pending, key)
	return e, nil
}
