package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

// StoreName returns middleware that installs the store name capability.
func StoreName(name string) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		return next(ctx, state, action, p.WithStoreName(name))
	}
}

// StateReader returns the committed state of the named store.
type StateReader func(storeName string) (any, error)

// CurrentState returns middleware that installs the current state
// capability. Requires the store name capability.
func CurrentState(read StateReader) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		name, err := p.StoreName()
		if err != nil {
			return store.Outcome{}, fmt.Errorf("current state requires store name: %w", err)
		}
		p = p.WithCurrentState(func() (any, error) { return read(name) })
		return next(ctx, state, action, p)
	}
}

// ErrNoAction rejects a nested dispatch that was given no action.
var ErrNoAction = errors.New("nested dispatch without an action")

// NestedDispatch starts a new top-level dispatch of action in which the named
// store starts from state. The future settles when that dispatch completes.
type NestedDispatch func(storeName string, state any, action ir.IRObject) (*future.Future[any], error)

// Dispatch returns middleware that installs the dispatch capability.
// Requires the store name, current state, and pause capabilities.
//
// Plugins.Dispatch(derived, action) waits for derived, starts the nested
// dispatch, and pauses on its completion. The paused updater resumes with the
// store's live state once the nested dispatch has committed, so the nested
// dispatch never blocks the round queue. A nil action pauses on an already
// rejected future, failing the round once it resumes.
func Dispatch(dispatch NestedDispatch) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		name, err := p.StoreName()
		if err != nil {
			return store.Outcome{}, fmt.Errorf("dispatch requires store name: %w", err)
		}
		if _, err := p.CurrentState(); err != nil {
			return store.Outcome{}, fmt.Errorf("dispatch requires current state: %w", err)
		}
		if !p.HasPause() {
			return store.Outcome{}, fmt.Errorf("dispatch requires pause: %w", store.ErrMissingCapability)
		}

		base := p
		p = p.WithDispatch(func(derived any, nextAction ir.IRObject) store.Suspension {
			if nextAction == nil {
				return base.Pause(future.Rejected[any](fmt.Errorf("store %s: %w", name, ErrNoAction)))
			}
			done := future.Then(future.From(derived), func(d any) (any, error) {
				f, err := dispatch(name, d, nextAction)
				if err != nil {
					return nil, err
				}
				if _, err := f.Await(context.Background()); err != nil {
					return nil, err
				}
				return base.CurrentState()
			})
			return base.Pause(done)
		})
		return next(ctx, state, action, p)
	}
}

// ReplaceState returns middleware that feeds state, instead of the store's
// own state, to updater 0 of the named store.
func ReplaceState(storeName string, state any) store.Middleware {
	return func(ctx context.Context, s any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		if name, err := p.StoreName(); err == nil && name == storeName && p.UpdaterIndex() == 0 {
			s = state
		}
		return next(ctx, s, action, p)
	}
}
