// Package store implements a single named state container and its update
// pipeline.
//
// A Store holds a state value, an ordered list of updaters, and an ordered
// list of middleware. Dispatching an action folds the state through every
// updater in registration order; each updater invocation runs inside the
// composed middleware chain.
//
// # Outcomes
//
// A chain produces an Outcome: either Completed with a new state, or
// Suspended with a future for the state. Suspension is how an updater defers
// the rest of its work (see Plugins.Pause). There are no sentinel errors for
// control flow; an error always means failure.
//
// # Identity
//
// Stores are immutable. A dispatch that leaves the state unchanged (per Same)
// returns the receiver itself, which callers use as the "nothing to notify"
// signal.
package store
