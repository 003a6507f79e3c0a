package store

import (
	"context"

	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/ir"
)

// Updater computes a store's next state for one action.
//
// The result is the new state, a Suspension from Plugins.Pause or
// Plugins.Dispatch, or a future of the new state. A nil result is an
// undefined-result failure.
type Updater func(ctx context.Context, state any, action ir.IRObject, p Plugins) (any, error)

// Next invokes the remainder of a middleware chain.
type Next func(ctx context.Context, state any, action ir.IRObject, p Plugins) (Outcome, error)

// Middleware wraps the rest of the chain. It may rewrite state, action, or
// plugins before calling next, or return without calling next at all.
type Middleware func(ctx context.Context, state any, action ir.IRObject, p Plugins, next Next) (Outcome, error)

// Compose builds one callable from mws (outermost first) around u.
func Compose(mws []Middleware, u Updater) Next {
	next := terminal(u)
	for i := len(mws) - 1; i >= 0; i-- {
		mw, inner := mws[i], next
		next = func(ctx context.Context, state any, action ir.IRObject, p Plugins) (Outcome, error) {
			return mw(ctx, state, action, p, inner)
		}
	}
	return next
}

// terminal adapts an updater to Next, turning its result into an Outcome.
func terminal(u Updater) Next {
	return func(ctx context.Context, state any, action ir.IRObject, p Plugins) (Outcome, error) {
		res, err := u(ctx, state, action, p)
		if err != nil {
			return Outcome{}, err
		}
		return settle(ctx, res, p)
	}
}

func settle(ctx context.Context, res any, p Plugins) (Outcome, error) {
	switch v := res.(type) {
	case nil:
		return Outcome{}, undefinedResult(p)
	case Suspension:
		if v.err != nil {
			return Outcome{}, v.err
		}
		return Suspended(v.Resume), nil
	case future.Awaitable:
		val, err := v.AwaitAny(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return settle(ctx, val, p)
	default:
		return Completed(v), nil
	}
}
