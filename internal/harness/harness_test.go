package harness

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/middleware"
	"github.com/roach88/multistore/internal/store"
)

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			result := RunWithGolden(t, path)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/counter_basics.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first).MarshalCanonical()
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second).MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_ReportsStepFailures(t *testing.T) {
	scenario := &Scenario{
		Name:    "step_failures",
		Program: "testdata/programs/counter.cue",
		Steps: []Step{
			{Dispatch: map[string]any{"type": "BOOM"}},
			{Dispatch: map[string]any{"type": "INC"}, ExpectError: "UPDATER_FAILURE"},
			{Dispatch: map[string]any{"type": "ADD"}, ExpectError: "UNKNOWN_STORE"},
		},
		Assertions: []Assertion{{Type: AssertRoundCount, Count: 3}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "step 0: unexpected error")
	assert.Contains(t, result.Errors[1], "step 1: expected error UPDATER_FAILURE, got success")
	assert.Contains(t, result.Errors[2], "step 2: expected error UNKNOWN_STORE")
	assert.Equal(t, map[string]any{"counter": int64(1), "greeting": "hello"}, result.State)
}

func TestRun_InvalidActionIsSynchronous(t *testing.T) {
	scenario := &Scenario{
		Name:    "invalid_action",
		Program: "testdata/programs/counter.cue",
		Steps: []Step{
			{Dispatch: map[string]any{"type": "ADD", "amount": func() {}}, ExpectError: "INVALID_ACTION"},
		},
		Assertions: []Assertion{{Type: AssertRoundCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Trace)
}

func TestRun_FractionalFieldReachesUpdaters(t *testing.T) {
	scenario := &Scenario{
		Name:    "fractional_amount",
		Program: "testdata/programs/counter.cue",
		Steps: []Step{
			{Dispatch: map[string]any{"type": "ADD", "amount": 1.5}, ExpectError: "UPDATER_FAILURE"},
		},
		Assertions: []Assertion{
			{Type: AssertRoundCount, Count: 1},
			{Type: AssertFinalState, Store: "counter", Expect: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "failed", result.Trace[0].Status)
	assert.Contains(t, result.Trace[0].Error, "want integer")
}

func TestRun_ProgramErrors(t *testing.T) {
	_, err := Run(&Scenario{Name: "missing", Program: "testdata/programs/missing.cue"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load program")
}

func TestRun_FlowPrefix(t *testing.T) {
	scenario := &Scenario{
		Name:       "prefixed",
		Program:    "testdata/programs/counter.cue",
		FlowPrefix: "case",
		Steps:      []Step{{Dispatch: map[string]any{"type": "INC"}}},
		Assertions: []Assertion{{Type: AssertRoundCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "case-0001", result.Trace[0].FlowToken)
}

func TestRun_WithMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var calls int
	counting := func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		calls++
		return next(ctx, state, action, p)
	}

	scenario := &Scenario{
		Name:       "logged",
		Program:    "testdata/programs/counter.cue",
		Steps:      []Step{{Dispatch: map[string]any{"type": "INC"}}},
		Assertions: []Assertion{{Type: AssertFinalState, Store: "counter", Expect: 1}},
	}

	result, err := Run(scenario,
		WithLogger(logger),
		WithMiddleware(middleware.Logging(logger), counting),
	)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Positive(t, calls)
	assert.Contains(t, buf.String(), "updater completed")
	assert.Contains(t, buf.String(), "store=counter")
}
