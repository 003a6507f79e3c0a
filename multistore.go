// Package multistore coordinates several named stores that all react to the
// same stream of actions.
//
// A Dispatcher owns the stores. Each Dispatch runs one atomic round: every
// store folds the action through its updaters, and either every store
// commits or none does. Updaters may pause on a future; the paused store
// keeps its state until a resume round picks the update up again, while
// later actions carry on.
//
//	d, err := multistore.NewDispatcher(map[string]any{
//		"counter": multistore.StoreSpec{
//			InitialState: 0,
//			Updaters: []multistore.Updater{
//				multistore.Reducer(func(s any, a multistore.Action) any { return s.(int) + 1 }),
//			},
//		},
//		"greeting": "hello",
//	})
//	if err != nil {
//		return err
//	}
//	_, err = d.DispatchAndWait(ctx, map[string]any{"type": "INC"})
package multistore

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/multistore/internal/engine"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/middleware"
	"github.com/roach88/multistore/internal/store"
)

type (
	Dispatcher = engine.Dispatcher
	Option     = engine.Option
	Error      = engine.Error
	ErrorCode  = engine.ErrorCode

	Subscriber    = engine.Subscriber
	AllSubscriber = engine.AllSubscriber

	Action = ir.IRObject

	Store       = store.Store
	StoreSpec   = store.Spec
	Updater     = store.Updater
	Middleware  = store.Middleware
	Next        = store.Next
	Plugins     = store.Plugins
	Outcome     = store.Outcome
	Suspension  = store.Suspension
	MergeFunc   = store.MergeFunc
	ReducerFunc = store.ReducerFunc

	UpdaterError = store.UpdaterError

	PausePoint = middleware.PausePoint
)

// Options.
var (
	WithLogger        = engine.WithLogger
	WithJournal       = engine.WithJournal
	WithClock         = engine.WithClock
	WithFlowGenerator = engine.WithFlowGenerator
	WithMiddleware    = engine.WithMiddleware
)

// Error predicates.
var (
	IsInvalidAction       = engine.IsInvalidAction
	IsInvalidArgument     = engine.IsInvalidArgument
	IsUnknownStore        = engine.IsUnknownStore
	IsAlreadyUnsubscribed = engine.IsAlreadyUnsubscribed
	IsUndefinedResult     = store.IsUndefinedResult
	IsUpdaterFailure      = store.IsUpdaterFailure
)

// NewDispatcher creates a dispatcher over the named stores. See engine.New
// for the accepted spec values.
func NewDispatcher(specs map[string]any, opts ...Option) (*Dispatcher, error) {
	return engine.New(specs, opts...)
}

// NewStore creates a store to hand to NewDispatcher.
func NewStore(spec StoreSpec) (*Store, error) {
	return store.New(spec)
}

// Reducer adapts a synchronous reducer to an Updater.
func Reducer(fn ReducerFunc) Updater {
	return store.Reducer(fn)
}

// Typed adapts an updater written against a concrete state type.
func Typed[S any](fn store.TypedUpdater[S]) Updater {
	return store.Typed(fn)
}

// LoggingMiddleware logs every updater invocation to logger at debug level,
// and failures at warn.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.Logging(logger)
}

// TracingMiddleware wraps every updater invocation in a span from the global
// OpenTelemetry tracer provider.
func TracingMiddleware() Middleware {
	return middleware.Tracing()
}

// TracingMiddlewareWithTracer is TracingMiddleware with an explicit tracer.
func TracingMiddlewareWithTracer(tracer trace.Tracer) Middleware {
	return middleware.TracingWithTracer(tracer)
}

// NewAction builds an action of the given type.
func NewAction(typ string) Action {
	return ir.NewAction(typ)
}
