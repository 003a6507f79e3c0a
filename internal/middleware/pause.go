package middleware

import (
	"context"
	"fmt"

	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

// PausePoint records where a store's update suspended.
type PausePoint struct {
	// Resume yields the output of the paused updater.
	Resume *future.Future[any]

	// UpdaterIndex is the index of the paused updater in the full list.
	UpdaterIndex int

	// State is the input the paused updater received.
	State any

	// Base is the store's committed state when the pausing round started.
	// Filled in by the round handler.
	Base any
}

// Pause returns middleware that installs the pause capability. Whenever the
// rest of the chain suspends, onPause receives the pause point and the
// suspended outcome is passed up unchanged.
func Pause(onPause func(PausePoint)) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		p = p.WithPause(func(v any) store.Suspension {
			return store.Suspension{Resume: future.From(v)}
		})

		out, err := next(ctx, state, action, p)
		if err != nil {
			return out, err
		}
		if out.IsSuspended() {
			resume := out.Resume()
			if resume == nil {
				resume = future.Resolved[any](nil)
			}
			onPause(PausePoint{Resume: resume, UpdaterIndex: p.UpdaterIndex(), State: state})
		}
		return out, nil
	}
}

// ResumeAt returns middleware that continues an update from pp.
//
// Updaters before pp.UpdaterIndex already ran and are skipped. At the paused
// index the resumed state is awaited and becomes that updater's output.
// Updaters after it run normally.
func ResumeAt(pp PausePoint) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		switch i := p.UpdaterIndex(); {
		case i < pp.UpdaterIndex:
			return store.Completed(pp.State), nil
		case i == pp.UpdaterIndex:
			resumed, err := pp.Resume.Await(ctx)
			if err != nil {
				return store.Outcome{}, err
			}
			return store.Completed(resumed), nil
		default:
			return next(ctx, state, action, p)
		}
	}
}

// PauseWithMerge returns middleware that reconciles the resumed state at
// pp.UpdaterIndex with the store's live state.
//
// If the live state is no longer pp.Base, another action committed while
// this store was paused, and merge(live, resumed, action) replaces the
// resumed state. A resumed state that already is the live state is kept, as
// is any resumed state when merge is nil. Requires the current state
// capability and must run outside ResumeAt.
func PauseWithMerge(pp PausePoint, merge store.MergeFunc) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		out, err := next(ctx, state, action, p)
		if err != nil || merge == nil || p.UpdaterIndex() != pp.UpdaterIndex || out.IsSuspended() {
			return out, err
		}

		live, err := p.CurrentState()
		if err != nil {
			return store.Outcome{}, fmt.Errorf("merge requires current state: %w", err)
		}
		if store.Same(live, pp.Base) || store.Same(live, out.State()) {
			return out, nil
		}
		return store.Completed(merge(live, out.State(), action)), nil
	}
}
