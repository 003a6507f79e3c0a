// Package ir provides the canonical value model for actions.
//
// Actions dispatched to a multistore are structurally arbitrary key/value
// records. They are carried as IRObject values so that every action has a
// deterministic canonical encoding and a content digest, which the journal and
// the golden traces rely on.
//
// Key design constraints:
//   - Whole numbers are always IRInt; only fractional or out-of-range
//     numbers are IRFloat
//   - All JSON tags use snake_case
//   - ir imports nothing internal
package ir
