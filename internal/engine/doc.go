// Package engine implements the multistore dispatcher.
//
// A Dispatcher owns a set of named stores and applies every dispatched action
// to all of them as one unit, in rounds.
//
// ARCHITECTURE:
//
// Round Queue:
// Each Dispatch call enqueues a round. Rounds run one at a time, strictly in
// FIFO order, on a drain goroutine started when the queue goes from empty to
// non-empty. The round queue is the only lock discipline for the store map:
// only the drain goroutine replaces it.
//
// Round Processing:
//  1. Read the current store map (at execution time, not enqueue time)
//  2. Run every participating store concurrently, each through its own
//     sequential updater pipeline
//  3. Join the stores fail-fast: any failure discards the whole round
//  4. Commit stores whose state changed and notify their subscribers
//  5. If a store paused, schedule a resume round for the paused stores only
//
// Resume rounds are appended at the tail once the pause futures of their
// round have settled. Later actions may therefore run before an earlier
// action's resume round: rounds are serialized, actions are not.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Every round is stamped with a monotonic seq from the Clock. Journal
// records are ordered by seq, never by wall-clock time.
//
// Flow Tokens:
// Every Dispatch call gets its own flow token. The token, not the action
// value, correlates rounds with the caller's future, so the same action value
// may be dispatched any number of times.
package engine
