package engine

import (
	"log/slog"

	"github.com/roach88/multistore/internal/store"
)

// Option configures optional Dispatcher parameters.
type Option func(*Dispatcher)

// WithLogger sets the logger for round and subscriber diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFlowGenerator sets the flow token generator.
// Defaults to UUIDv7Generator. Tests use a fixed or sequential generator for
// reproducible journals.
func WithFlowGenerator(gen FlowTokenGenerator) Option {
	return func(d *Dispatcher) {
		if gen != nil {
			d.flowGen = gen
		}
	}
}

// WithClock sets the clock that stamps round sequence numbers.
func WithClock(clock SequenceClock) Option {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithMiddleware appends middleware run around every store's own middleware,
// inside the dispatcher's built-in capabilities. The first one given is the
// outermost.
func WithMiddleware(mws ...store.Middleware) Option {
	return func(d *Dispatcher) {
		d.middleware = append(d.middleware, mws...)
	}
}

// WithJournal records every finished round to j.
func WithJournal(j Journal) Option {
	return func(d *Dispatcher) {
		d.journal = j
	}
}
