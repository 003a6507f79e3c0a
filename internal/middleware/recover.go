package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

// Recover returns middleware that converts a panic in the rest of the chain
// into an updater failure. The panic is logged with a stack trace.
func Recover(logger *slog.Logger) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (out store.Outcome, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				name, _ := p.StoreName()
				logger.ErrorContext(ctx, "updater panicked",
					slog.String("store", name),
					slog.Int("updater_index", p.UpdaterIndex()),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				out = store.Outcome{}
				retErr = &store.UpdaterError{
					Code:  store.ErrCodeUpdaterFailure,
					Store: name,
					Index: p.UpdaterIndex(),
					Err:   fmt.Errorf("panic: %v", r),
				}
			}
		}()
		return next(ctx, state, action, p)
	}
}
