package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/multistore/internal/compiler"
	"github.com/roach88/multistore/internal/engine"
	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/journal"
	"github.com/roach88/multistore/internal/store"
	"github.com/roach88/multistore/internal/testutil"
)

// DefaultTimeout bounds a whole scenario run.
const DefaultTimeout = 10 * time.Second

// Harness is the test execution engine.
// It runs one scenario with a deterministic clock and flow tokens.
type Harness struct {
	dispatcher *engine.Dispatcher
	journal    *journal.Journal
	logger     *slog.Logger

	mu            sync.Mutex
	notifications map[string]int

	inflight []inflight
}

// inflight is an async dispatch awaiting a wait step.
type inflight struct {
	step   int
	expect string
	f      *future.Future[*engine.Dispatcher]
}

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger     *slog.Logger
	middleware []store.Middleware
}

// WithLogger sends dispatcher and step logs to logger. Runs are silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMiddleware installs middleware around every updater of the scenario's
// program.
func WithMiddleware(mws ...store.Middleware) Option {
	return func(c *runConfig) {
		c.middleware = append(c.middleware, mws...)
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh dispatcher and a fresh in-memory
// journal. Step and assertion failures are reported in the result; the
// returned error is reserved for scenarios that cannot run at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	prog, err := compiler.Load(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	specs, err := compiler.Build(prog)
	if err != nil {
		return nil, fmt.Errorf("build program: %w", err)
	}

	j, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	logger := cfg.logger.With("scenario", scenario.Name)
	d, err := engine.New(specs,
		engine.WithJournal(j),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithFlowGenerator(testutil.NewSequentialFlowGenerator(scenario.FlowPrefix)),
		engine.WithLogger(logger),
		engine.WithMiddleware(cfg.middleware...),
	)
	if err != nil {
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}

	h := &Harness{
		dispatcher:    d,
		journal:       j,
		logger:        logger,
		notifications: make(map[string]int),
	}
	if err := h.subscribe(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)
	h.awaitInflight(ctx, result)

	rounds, err := j.ReadRounds(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	for _, r := range rounds {
		result.Trace = append(result.Trace, traceEvent(r))
	}

	result.State = d.GetStateForAll()
	h.mu.Lock()
	for name, n := range h.notifications {
		result.Notifications[name] = n
	}
	h.mu.Unlock()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// subscribe counts notifications for every store.
func (h *Harness) subscribe() error {
	for _, name := range h.dispatcher.Stores() {
		_, err := h.dispatcher.SubscribeTo(name, func(any) {
			h.mu.Lock()
			h.notifications[name]++
			h.mu.Unlock()
		})
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", name, err)
		}
	}
	return nil
}

func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		if step.Wait {
			h.awaitInflight(ctx, result)
			continue
		}

		f, err := h.dispatcher.Dispatch(step.Dispatch)
		if err != nil {
			checkOutcome(i, step.ExpectError, err, result)
			continue
		}
		if step.Async {
			h.inflight = append(h.inflight, inflight{step: i, expect: step.ExpectError, f: f})
			continue
		}
		_, err = f.Await(ctx)
		checkOutcome(i, step.ExpectError, err, result)

		h.logger.Debug("step completed", "step", i, "error", err)
	}
}

// awaitInflight waits for every async dispatch in the order it was made.
func (h *Harness) awaitInflight(ctx context.Context, result *Result) {
	for _, p := range h.inflight {
		_, err := p.f.Await(ctx)
		checkOutcome(p.step, p.expect, err, result)
	}
	h.inflight = nil
}

func checkOutcome(step int, expect string, err error, result *Result) {
	switch {
	case expect == "" && err != nil:
		result.AddError(fmt.Sprintf("step %d: unexpected error: %v", step, err))
	case expect != "" && err == nil:
		result.AddError(fmt.Sprintf("step %d: expected error %s, got success", step, expect))
	case expect != "" && engine.Code(err) != expect:
		result.AddError(fmt.Sprintf("step %d: expected error %s, got %q (%v)", step, expect, engine.Code(err), err))
	}
}
