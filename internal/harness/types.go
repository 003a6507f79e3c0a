package harness

import "github.com/roach88/multistore/internal/journal"

// TraceEvent is one journaled round.
type TraceEvent struct {
	Seq        int64    `json:"seq"`
	FlowToken  string   `json:"flow_token"`
	Attempt    int      `json:"attempt"`
	ActionType string   `json:"action_type"`
	Status     string   `json:"status"`
	Stores     []string `json:"stores"`
	Changed    []string `json:"changed"`
	Paused     []string `json:"paused"`
	Error      string   `json:"error,omitempty"`
}

func traceEvent(r journal.Round) TraceEvent {
	return TraceEvent{
		Seq:        r.Seq,
		FlowToken:  r.FlowToken,
		Attempt:    r.Attempt,
		ActionType: r.ActionType,
		Status:     string(r.Status),
		Stores:     r.Stores,
		Changed:    r.Changed,
		Paused:     r.Paused,
		Error:      r.Error,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every journaled round in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final state of every store.
	State map[string]any `json:"state,omitempty"`

	// Notifications counts subscriber calls per store.
	Notifications map[string]int `json:"notifications,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:          true,
		Trace:         []TraceEvent{},
		Errors:        []string{},
		State:         make(map[string]any),
		Notifications: make(map[string]int),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
