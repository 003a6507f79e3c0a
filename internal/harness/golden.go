package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/multistore/internal/ir"
)

// TraceSnapshot is the golden file content of one scenario.
type TraceSnapshot struct {
	Scenario string
	Trace    []TraceEvent
	State    map[string]any
}

// Snapshot builds the golden snapshot of a result.
func Snapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{Scenario: name, Trace: result.Trace, State: result.State}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		trace[i] = toCanonicalMap(ev)
	}
	state := make(map[string]any, len(s.State))
	for k, v := range s.State {
		state[k] = v
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario": s.Scenario,
		"trace":    trace,
		"state":    state,
	})
}

func toCanonicalMap(ev TraceEvent) map[string]any {
	m := map[string]any{
		"seq":         ev.Seq,
		"flow_token":  ev.FlowToken,
		"attempt":     ev.Attempt,
		"action_type": ev.ActionType,
		"status":      ev.Status,
		"stores":      names(ev.Stores),
		"changed":     names(ev.Changed),
		"paused":      names(ev.Paused),
	}
	if ev.Error != "" {
		m["error"] = ev.Error
	}
	return m
}

func names(ns []string) []any {
	out := make([]any, len(ns))
	for i, n := range ns {
		out[i] = n
	}
	return out
}

// RunWithGolden runs the scenario at path and compares its snapshot against
// testdata/golden/<name>.golden. Run tests with -update to rewrite goldens.
func RunWithGolden(t *testing.T, path string) *Result {
	t.Helper()

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario %s: %v", scenario.Name, err)
	}
	AssertGolden(t, scenario.Name, result)
	return result
}

// AssertGolden compares the canonical snapshot of result with its golden.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	data, err := Snapshot(name, result).MarshalCanonical()
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

// String renders a snapshot for CLI output.
func (s TraceSnapshot) String() string {
	data, err := s.MarshalCanonical()
	if err != nil {
		return fmt.Sprintf("%+v", s.Trace)
	}
	return string(data)
}
