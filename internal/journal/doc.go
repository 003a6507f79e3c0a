// Package journal provides a SQLite-backed audit trail of dispatch rounds.
//
// The journal is append-only. One row is written per finished round:
// committed, paused (committed with stores still suspended), or failed
// (nothing committed). It is a debugging aid only; store state is never
// restored from it.
//
// # Critical Patterns
//
// Logical Identity and Time:
//   - Rounds are ordered by seq INTEGER (logical clock), NEVER timestamps
//   - Row IDs are content-addressed: ir.RoundID(flow_token, attempt, seq)
//
// Deterministic Query Results:
//   - All queries MUST include: ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Canonical Payloads:
//   - Actions are stored as canonical JSON with their ir.ActionDigest
//   - Store name lists are stored as sorted JSON arrays
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package journal
