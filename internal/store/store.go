package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/multistore/internal/ir"
)

// MergeFunc reconciles a resumed state with a live state that advanced while
// the store was paused.
type MergeFunc func(live, resumed any, action ir.IRObject) any

// Spec describes a store to create.
type Spec struct {
	InitialState any
	Updaters     []Updater
	Middleware   []Middleware

	// Merge is optional. Without it a resumed state overwrites the live one.
	Merge MergeFunc
}

// Store is an immutable named-state container.
//
// Thread-safety: a Store is never mutated after construction and is safe for
// concurrent use.
type Store struct {
	state      any
	updaters   []Updater
	middleware []Middleware
	merge      MergeFunc
}

// New creates a Store from spec.
// Returns ErrInvalidSpec if the initial state is nil or an updater or
// middleware entry is nil.
func New(spec Spec) (*Store, error) {
	if spec.InitialState == nil {
		return nil, fmt.Errorf("%w: initial state is required", ErrInvalidSpec)
	}
	for i, u := range spec.Updaters {
		if u == nil {
			return nil, fmt.Errorf("%w: updater %d is nil", ErrInvalidSpec, i)
		}
	}
	for i, mw := range spec.Middleware {
		if mw == nil {
			return nil, fmt.Errorf("%w: middleware %d is nil", ErrInvalidSpec, i)
		}
	}

	return &Store{
		state:      spec.InitialState,
		updaters:   slices.Clone(spec.Updaters),
		middleware: slices.Clone(spec.Middleware),
		merge:      spec.Merge,
	}, nil
}

// MustNew is like New but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustNew(spec Spec) *Store {
	s, err := New(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Static creates a store with no updaters. Its state never changes.
func Static(v any) *Store {
	return &Store{state: v}
}

// Dispatch runs action through the store's updaters.
//
// mws run outside the store's own middleware. Returns the updated store, or
// the receiver itself if the state did not change (see Same). If the chain
// suspended, the receiver is returned with suspended set to true.
func (s *Store) Dispatch(ctx context.Context, action ir.IRObject, mws ...Middleware) (next *Store, suspended bool, err error) {
	if action == nil {
		return nil, false, ir.ErrNotObject
	}

	chain := make([]Middleware, 0, len(mws)+len(s.middleware))
	chain = append(chain, mws...)
	chain = append(chain, s.middleware...)

	out, err := Pipeline{Updaters: s.updaters}.Run(ctx, s.state, action, chain)
	if err != nil {
		return nil, false, err
	}
	if out.IsSuspended() {
		return s, true, nil
	}
	return s.ReplaceState(out.State()), false, nil
}

// State returns the current state.
func (s *Store) State() any {
	return s.state
}

// ReplaceState returns a store with the same updaters holding state.
// Returns the receiver if state is the same as the current one.
func (s *Store) ReplaceState(state any) *Store {
	if Same(state, s.state) {
		return s
	}
	cp := *s
	cp.state = state
	return &cp
}

// Merge returns the store's merge function, or nil.
func (s *Store) Merge() MergeFunc {
	return s.merge
}

// UpdaterCount returns the number of registered updaters.
func (s *Store) UpdaterCount() int {
	return len(s.updaters)
}
