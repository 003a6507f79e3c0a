// Package queryir is the query representation for reading the round
// journal.
//
// A Query names which journaled rounds to return; backends turn it into
// their own language (querysql compiles it to parameterized SQLite). Query
// and Predicate are sealed interfaces, so backends can switch over every
// node type exhaustively.
//
// Predicates:
//   - Equals: a scalar round field equals a literal
//   - Includes: a list field (stores, changed, paused) contains a name
//   - SeqAfter: the round ran after a given seq
//   - And: every predicate holds
//
// Results are always in seq order; Select.Limit caps how many are returned.
package queryir
