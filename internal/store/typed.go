package store

import (
	"context"
	"fmt"

	"github.com/roach88/multistore/internal/ir"
)

// TypedUpdater is an Updater written against a concrete state type.
type TypedUpdater[S any] func(ctx context.Context, state S, action ir.IRObject, p Plugins) (any, error)

// Typed adapts fn to an Updater. A state of another type fails the update.
func Typed[S any](fn TypedUpdater[S]) Updater {
	return func(ctx context.Context, state any, action ir.IRObject, p Plugins) (any, error) {
		s, ok := state.(S)
		if !ok {
			var zero S
			return nil, fmt.Errorf("state has type %T, want %T", state, zero)
		}
		return fn(ctx, s, action, p)
	}
}

// ReducerFunc is a plain synchronous reducer.
type ReducerFunc func(state any, action ir.IRObject) any

// Reducer adapts fn to an Updater.
func Reducer(fn ReducerFunc) Updater {
	return func(_ context.Context, state any, action ir.IRObject, _ Plugins) (any, error) {
		return fn(state, action), nil
	}
}

// FromReducer creates a one-updater store seeded by calling fn with a nil
// state and the init action.
func FromReducer(fn ReducerFunc) (*Store, error) {
	return New(Spec{
		InitialState: fn(nil, ir.InitAction()),
		Updaters:     []Updater{Reducer(fn)},
	})
}
