package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/journal"
	"github.com/roach88/multistore/internal/middleware"
	"github.com/roach88/multistore/internal/store"
	"github.com/roach88/multistore/internal/tracker"
)

// Dispatcher owns a set of named stores and applies actions to all of them
// in serialized rounds.
//
// Thread-safety: all exported methods are safe for concurrent use. The store
// map is an immutable snapshot; only the round queue's drain goroutine
// replaces it, so readers never take a lock.
type Dispatcher struct {
	stores atomic.Pointer[map[string]*store.Store]

	rounds  *roundQueue
	pending *tracker.Tracker[string, *Dispatcher]
	subs    *subscribers

	clock      SequenceClock
	flowGen    FlowTokenGenerator
	logger     *slog.Logger
	middleware []store.Middleware
	journal    Journal
}

// New creates a Dispatcher from a map of store name to store spec.
//
// Each spec value may be:
//   - *store.Store: used as is
//   - store.Spec: passed to store.New
//   - store.ReducerFunc or func(any, ir.IRObject) any: a one-updater store
//     seeded with the reducer's answer to the init action
//   - anything else: a static store holding that value
//
// Returns an *Error with ErrCodeInvalidArgument if a name is empty or a spec
// is rejected.
func New(specs map[string]any, opts ...Option) (*Dispatcher, error) {
	stores := make(map[string]*store.Store, len(specs))
	for name, spec := range specs {
		if name == "" {
			return nil, invalidArgument("store name must not be empty")
		}
		s, err := toStore(spec)
		if err != nil {
			return nil, &Error{Code: ErrCodeInvalidArgument, Message: "invalid store spec", Store: name, Err: err}
		}
		stores[name] = s
	}

	d := &Dispatcher{
		rounds:  newRoundQueue(),
		pending: tracker.New[string, *Dispatcher](),
		subs:    newSubscribers(),
		clock:   NewClock(),
		flowGen: UUIDv7Generator{},
		logger:  slog.Default(),
		journal: nopJournal{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.stores.Store(&stores)

	return d, nil
}

func toStore(spec any) (*store.Store, error) {
	switch v := spec.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil spec", store.ErrInvalidSpec)
	case *store.Store:
		if v == nil {
			return nil, fmt.Errorf("%w: nil store", store.ErrInvalidSpec)
		}
		return v, nil
	case store.Spec:
		return store.New(v)
	case store.ReducerFunc:
		return store.FromReducer(v)
	case func(any, ir.IRObject) any:
		return store.FromReducer(v)
	default:
		return store.Static(v), nil
	}
}

// Dispatch applies action to every store.
//
// The action is validated synchronously: anything that is not an object
// fails with ErrCodeInvalidAction before any updater runs. Otherwise a round
// is queued and the returned future resolves with the dispatcher once every
// store has finished with the action, including after any pauses. If a round
// fails, the future rejects and no store changes for that round.
func (d *Dispatcher) Dispatch(action any) (*future.Future[*Dispatcher], error) {
	obj, err := ir.ToObject(action)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalidAction, Message: "action must be an object", Err: err}
	}
	return d.dispatch(obj, nil)
}

// DispatchAndWait dispatches action and waits for it to finish or for ctx to
// be done. Cancelling ctx stops the wait only; the action keeps running.
func (d *Dispatcher) DispatchAndWait(ctx context.Context, action any) (*Dispatcher, error) {
	f, err := d.Dispatch(action)
	if err != nil {
		return nil, err
	}
	return f.Await(ctx)
}

func (d *Dispatcher) dispatch(action ir.IRObject, extra []store.Middleware) (*future.Future[*Dispatcher], error) {
	token := d.flowGen.Generate()
	f, err := d.pending.WaitFor(token)
	if err != nil {
		return nil, fmt.Errorf("flow token %s: %w", token, err)
	}

	d.enqueue(roundTask{flowToken: token, action: action, extra: extra})
	return f, nil
}

// nestedDispatch implements the dispatch capability: a new top-level
// dispatch in which storeName starts from state.
func (d *Dispatcher) nestedDispatch(storeName string, state any, action ir.IRObject) (*future.Future[any], error) {
	f, err := d.dispatch(action, []store.Middleware{middleware.ReplaceState(storeName, state)})
	if err != nil {
		return nil, err
	}
	return future.From(f), nil
}

func (d *Dispatcher) enqueue(t roundTask) {
	d.rounds.push(func() { d.runRound(t) })
}

// GetStateFor returns the committed state of the named store.
func (d *Dispatcher) GetStateFor(name string) (any, error) {
	if name == "" {
		return nil, invalidArgument("store name must not be empty")
	}
	s, ok := d.snapshot()[name]
	if !ok {
		return nil, unknownStore(name)
	}
	return s.State(), nil
}

// GetStateForAll returns the committed state of every store.
// The map is a fresh copy and may be modified by the caller.
func (d *Dispatcher) GetStateForAll() map[string]any {
	stores := d.snapshot()
	states := make(map[string]any, len(stores))
	for name, s := range stores {
		states[name] = s.State()
	}
	return states
}

// Stores returns the registered store names in sorted order.
func (d *Dispatcher) Stores() []string {
	return slices.Sorted(maps.Keys(d.snapshot()))
}

// QueueLen returns the number of rounds waiting to run.
func (d *Dispatcher) QueueLen() int {
	return d.rounds.len()
}

// Pending returns the number of dispatch calls whose future has not settled.
func (d *Dispatcher) Pending() int {
	return d.pending.Pending()
}

func (d *Dispatcher) snapshot() map[string]*store.Store {
	return *d.stores.Load()
}

// commit installs every store in next whose instance differs from the
// committed one and returns the changed names in sorted order.
// Must only be called from the round queue.
func (d *Dispatcher) commit(next map[string]*store.Store) []string {
	current := d.snapshot()

	var changed []string
	for name, s := range next {
		if current[name] != s {
			changed = append(changed, name)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	updated := maps.Clone(current)
	for _, name := range changed {
		updated[name] = next[name]
	}
	d.stores.Store(&updated)

	slices.Sort(changed)
	return changed
}

func (d *Dispatcher) record(ctx context.Context, r journal.Round) {
	if err := d.journal.RecordRound(ctx, r); err != nil {
		d.logger.Error("failed to journal round",
			"flow_token", r.FlowToken,
			"seq", r.Seq,
			"error", err)
	}
}
