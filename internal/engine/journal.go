package engine

import (
	"context"

	"github.com/roach88/multistore/internal/journal"
)

// Journal receives a record of every finished round.
// Implemented by *journal.Journal (sqlite) and by in-memory fakes in tests.
//
// Journal errors never fail a round: the dispatcher logs them and moves on.
type Journal interface {
	RecordRound(ctx context.Context, r journal.Round) error
}

// nopJournal discards every round.
type nopJournal struct{}

func (nopJournal) RecordRound(context.Context, journal.Round) error { return nil }
