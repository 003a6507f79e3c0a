// Package middleware provides the store middleware used by the dispatcher and
// a few general-purpose ones for applications.
//
// A middleware wraps one updater invocation. Middleware are composed so that
// the first in a list is the outermost wrapper:
//
//	// logging → recover → updater
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Capability middleware
//
//   - [StoreName] installs Plugins.StoreName
//   - [CurrentState] installs Plugins.CurrentState
//   - [Pause] installs Plugins.Pause and reports every suspension as a [PausePoint]
//   - [Dispatch] installs Plugins.Dispatch for cross-store recursion
//
// # Resumption middleware
//
//   - [ResumeAt] skips the updaters that already ran and delivers the resumed state
//   - [PauseWithMerge] reconciles a resumed state with a live state that moved on
//   - [ReplaceState] starts a store from a derived state
//
// # General middleware
//
//   - [Logging], [Recover], [Tracing]
package middleware
