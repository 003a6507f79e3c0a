package middleware

import (
	"context"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

var bg = context.Background()

func act(typ string) ir.IRObject { return ir.NewAction(typ) }

// invoke runs one updater at index of count through mws.
func invoke(mws []store.Middleware, u store.Updater, index, count int, state any) (store.Outcome, error) {
	return store.Compose(mws, u)(bg, state, act("TEST"), store.NewPlugins(index, count))
}

// identity returns its input state.
func identity(_ context.Context, s any, _ ir.IRObject, _ store.Plugins) (any, error) {
	return s, nil
}

// addN returns an updater adding n to an int state and counting its calls.
func addN(n int, calls *int) store.Updater {
	return store.Typed(func(_ context.Context, s int, _ ir.IRObject, _ store.Plugins) (any, error) {
		if calls != nil {
			*calls++
		}
		return s + n, nil
	})
}
