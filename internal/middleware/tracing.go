package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

// tracerName is the instrumentation scope name for updater tracing.
const tracerName = "github.com/roach88/multistore"

// Tracing returns middleware that wraps each updater invocation in an
// OpenTelemetry span. Without a global TracerProvider the noop tracer is
// used and the middleware is a pass-through.
func Tracing() store.Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
//
// Span attributes: multistore.store, multistore.updater.index,
// multistore.updater.count, multistore.action.type, multistore.flow_token.
// A paused invocation sets multistore.paused=true.
func TracingWithTracer(tracer trace.Tracer) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		name, _ := p.StoreName()
		ctx, span := tracer.Start(ctx, "multistore.updater",
			trace.WithAttributes(
				attribute.String("multistore.store", name),
				attribute.Int("multistore.updater.index", p.UpdaterIndex()),
				attribute.Int("multistore.updater.count", p.UpdaterCount()),
				attribute.String("multistore.action.type", action.Type()),
				attribute.String("multistore.flow_token", FlowToken(ctx)),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		out, err := next(ctx, state, action, p)
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		default:
			span.SetAttributes(attribute.Bool("multistore.paused", out.IsSuspended()))
			span.SetStatus(codes.Ok, "")
		}

		return out, err
	}
}
