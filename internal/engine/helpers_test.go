package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/journal"
	"github.com/roach88/multistore/internal/store"
)

var bg = context.Background()

func inc() ir.IRObject { return ir.NewAction("INC") }

// counter increments on INC and ignores everything else.
var counter = store.Typed(func(_ context.Context, s int, a ir.IRObject, _ store.Plugins) (any, error) {
	if a.Type() == "INC" {
		return s + 1, nil
	}
	return s, nil
})

func counterStore() store.Spec {
	return store.Spec{InitialState: 0, Updaters: []store.Updater{counter}}
}

func mustDispatcher(t *testing.T, specs map[string]any, opts ...Option) *Dispatcher {
	t.Helper()
	d, err := New(specs, opts...)
	require.NoError(t, err)
	return d
}

func mustState(t *testing.T, d *Dispatcher, name string) any {
	t.Helper()
	s, err := d.GetStateFor(name)
	require.NoError(t, err)
	return s
}

// memJournal records rounds in memory.
type memJournal struct {
	mu     sync.Mutex
	rounds []journal.Round
}

func (j *memJournal) RecordRound(_ context.Context, r journal.Round) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rounds = append(j.rounds, r)
	return nil
}

func (j *memJournal) all() []journal.Round {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Round(nil), j.rounds...)
}

// gate is a future the test settles by hand.
type gate struct {
	ready   chan struct{}
	release func()
}

func newGate() *gate {
	g := &gate{ready: make(chan struct{})}
	var once sync.Once
	g.release = func() { once.Do(func() { close(g.ready) }) }
	return g
}
