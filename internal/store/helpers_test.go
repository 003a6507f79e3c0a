package store

import (
	"context"

	"github.com/roach88/multistore/internal/ir"
)

var bg = context.Background()

// add returns an updater adding n to an int state.
func add(n int) Updater {
	return Typed(func(_ context.Context, s int, _ ir.IRObject, _ Plugins) (any, error) {
		return s + n, nil
	})
}

// record returns an updater that appends its index to calls and passes the
// state through unchanged.
func record(calls *[]int) Updater {
	return func(_ context.Context, s any, _ ir.IRObject, p Plugins) (any, error) {
		*calls = append(*calls, p.UpdaterIndex())
		return s, nil
	}
}

func inc() ir.IRObject { return ir.NewAction("INC") }
