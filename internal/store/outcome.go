package store

import "github.com/roach88/multistore/internal/future"

// Outcome is the result of one middleware chain invocation.
type Outcome struct {
	state     any
	resume    *future.Future[any]
	suspended bool
}

// Completed returns an Outcome carrying the next state.
func Completed(state any) Outcome {
	return Outcome{state: state}
}

// Suspended returns an Outcome whose state arrives later through resume.
func Suspended(resume *future.Future[any]) Outcome {
	return Outcome{resume: resume, suspended: true}
}

// IsSuspended reports whether the chain deferred its result.
func (o Outcome) IsSuspended() bool {
	return o.suspended
}

// State returns the completed state. It is nil for a suspended outcome.
func (o Outcome) State() any {
	return o.state
}

// Resume returns the future of a suspended outcome, or nil.
func (o Outcome) Resume() *future.Future[any] {
	return o.resume
}

// Suspension is returned by an updater that wants to pause. Updaters obtain
// one from Plugins.Pause or Plugins.Dispatch and return it as their state.
type Suspension struct {
	Resume *future.Future[any]
	err    error
}

// Err reports why the suspension could not be created, if it could not.
func (s Suspension) Err() error {
	return s.err
}
