package journal

import "github.com/roach88/multistore/internal/ir"

// Status is the outcome of a round.
type Status string

const (
	// StatusCommitted means the round committed and nothing is left to run.
	StatusCommitted Status = "committed"

	// StatusPaused means the round committed but some stores suspended and
	// will run again in a resume round.
	StatusPaused Status = "paused"

	// StatusFailed means a store failed and the round committed nothing.
	StatusFailed Status = "failed"
)

// Round is one journaled round.
type Round struct {
	// Seq is the logical clock value stamped when the round started.
	Seq int64

	// FlowToken identifies the dispatch call.
	FlowToken string

	// Attempt is 0 for the first round of a dispatch and counts resumes.
	Attempt int

	ActionType string
	Action     ir.IRObject
	Status     Status

	// Stores lists the participating stores.
	Stores []string

	// Changed lists the stores whose state was committed.
	Changed []string

	// Paused lists the stores that suspended.
	Paused []string

	// Error is the failure message of a failed round.
	Error string
}

// ID returns the content-addressed identity of the round.
func (r Round) ID() string {
	return ir.RoundID(r.FlowToken, r.Attempt, r.Seq)
}
