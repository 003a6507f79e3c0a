package engine

import "sync/atomic"

// SequenceClock stamps rounds with increasing sequence numbers.
// Implemented by Clock (production) and testutil.DeterministicClock (tests).
type SequenceClock interface {
	Next() int64
}

// Clock is a monotonic logical clock for round ordering.
//
// Every round is stamped with a strictly increasing seq. Journal readers order
// by seq, so ordering never depends on wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start. Used to continue numbering
// after the last seq found in an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
