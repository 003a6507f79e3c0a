package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

// Logging returns middleware that logs each updater invocation.
func Logging(logger *slog.Logger) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		name, _ := p.StoreName()
		attrs := []any{
			slog.String("store", name),
			slog.Int("updater_index", p.UpdaterIndex()),
			slog.String("action_type", action.Type()),
			slog.String("flow_token", FlowToken(ctx)),
		}

		logger.DebugContext(ctx, "updater started", attrs...)

		start := time.Now()
		out, err := next(ctx, state, action, p)
		attrs = append(attrs, slog.Duration("elapsed", time.Since(start)))

		switch {
		case err != nil:
			logger.WarnContext(ctx, "updater failed", append(attrs, slog.String("error", err.Error()))...)
		case out.IsSuspended():
			logger.DebugContext(ctx, "updater paused", attrs...)
		default:
			logger.DebugContext(ctx, "updater completed", attrs...)
		}

		return out, err
	}
}
