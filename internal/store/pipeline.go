package store

import (
	"context"

	"github.com/roach88/multistore/internal/ir"
)

// Pipeline drives one store's updaters for one action.
type Pipeline struct {
	Updaters []Updater
}

// Run folds state through every updater in order. Each updater runs inside
// the chain built from mws and sees its own index and the full updater count.
//
// The fold is sequential: updater i+1 starts only after updater i produced a
// state. A suspended outcome stops the fold and is returned as is; the caller
// decides how to resume. An error stops the fold and is returned as an
// *UpdaterError.
func (p Pipeline) Run(ctx context.Context, state any, action ir.IRObject, mws []Middleware) (Outcome, error) {
	total := len(p.Updaters)
	if total == 0 {
		return Completed(state), nil
	}

	for i, u := range p.Updaters {
		if err := ctx.Err(); err != nil {
			return Outcome{}, wrapUpdaterError(err, i)
		}

		plugins := NewPlugins(i, total)
		out, err := Compose(mws, u)(ctx, state, action, plugins)
		if err != nil {
			return Outcome{}, wrapUpdaterError(err, i)
		}
		if out.IsSuspended() {
			return out, nil
		}
		if out.State() == nil {
			return Outcome{}, undefinedResult(plugins)
		}
		state = out.State()
	}

	return Completed(state), nil
}
