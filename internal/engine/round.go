package engine

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/journal"
	"github.com/roach88/multistore/internal/middleware"
	"github.com/roach88/multistore/internal/store"
)

// roundTask is everything needed to run one round of one dispatch call.
type roundTask struct {
	flowToken string
	action    ir.IRObject

	// attempt is 0 for the first round and counts resume rounds after it.
	attempt int

	// prior holds the pause points of the previous round. nil on the first
	// round, when every store participates.
	prior map[string]middleware.PausePoint

	// extra runs in the first round only.
	extra []store.Middleware
}

// roundResult is the outcome of a successful round.
type roundResult struct {
	// stores holds every participating store after the round. A store that
	// did not change, or that paused, is the same instance it was before.
	stores map[string]*store.Store

	// paused holds the stores that suspended, keyed by name.
	paused map[string]middleware.PausePoint
}

// roundHandler runs one round against a snapshot of the store map.
type roundHandler struct {
	read       middleware.StateReader
	nested     middleware.NestedDispatch
	logger     *slog.Logger
	middleware []store.Middleware
}

// run applies action to every participating store concurrently.
//
// Participants are all stores when prior is nil, otherwise only the stores
// named in prior, which resume from their pause points. The join is
// fail-fast: the first store error cancels the others and is returned, and
// no partial result escapes.
func (h *roundHandler) run(ctx context.Context, stores map[string]*store.Store, action ir.IRObject, prior map[string]middleware.PausePoint, extra []store.Middleware) (roundResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	paused := make(map[string]middleware.PausePoint)

	futures := make(map[string]*future.Future[*store.Store], len(stores))
	for name, s := range stores {
		pp, resuming := prior[name]
		if prior != nil && !resuming {
			continue
		}

		onPause := func(p middleware.PausePoint) {
			p.Base = s.State()
			mu.Lock()
			paused[name] = p
			mu.Unlock()
		}
		chain := h.chain(name, s, onPause, resuming, pp, extra)

		futures[name] = future.Go(ctx, func(ctx context.Context) (*store.Store, error) {
			next, _, err := s.Dispatch(ctx, action, chain...)
			if err != nil {
				return nil, attachStore(err, name)
			}
			return next, nil
		})
	}

	results, err := future.AllMap(ctx, futures).Await(ctx)
	if err != nil {
		cancel()
		all := make([]future.Awaitable, 0, len(futures))
		for _, f := range futures {
			all = append(all, f)
		}
		<-future.Settled(all...)
		return roundResult{}, err
	}

	mu.Lock()
	defer mu.Unlock()
	return roundResult{stores: results, paused: maps.Clone(paused)}, nil
}

// chain builds the middleware a store runs under for one round, outermost
// first: capabilities, then resume handling, then extra, then panic
// recovery, then user middleware.
func (h *roundHandler) chain(name string, s *store.Store, onPause func(middleware.PausePoint), resuming bool, pp middleware.PausePoint, extra []store.Middleware) []store.Middleware {
	mws := []store.Middleware{
		middleware.StoreName(name),
		middleware.CurrentState(h.read),
		middleware.Pause(onPause),
		middleware.Dispatch(h.nested),
	}
	if resuming {
		mws = append(mws, middleware.PauseWithMerge(pp, s.Merge()), middleware.ResumeAt(pp))
	}
	mws = append(mws, extra...)
	mws = append(mws, middleware.Recover(h.logger))
	return append(mws, h.middleware...)
}

// attachStore makes sure err names the store it came from.
func attachStore(err error, name string) error {
	var ue *store.UpdaterError
	if errors.As(err, &ue) {
		if ue.Store == "" {
			ue.Store = name
		}
		return err
	}
	return &store.UpdaterError{Code: store.ErrCodeUpdaterFailure, Store: name, Index: -1, Err: err}
}

// runRound executes t on the round queue and settles or re-queues its
// dispatch call.
func (d *Dispatcher) runRound(t roundTask) {
	seq := d.clock.Next()
	ctx := middleware.WithFlowToken(context.Background(), t.flowToken)

	h := &roundHandler{
		read:       d.GetStateFor,
		nested:     d.nestedDispatch,
		logger:     d.logger,
		middleware: d.middleware,
	}

	stores := d.snapshot()
	participants := slices.Sorted(maps.Keys(stores))
	if t.prior != nil {
		participants = slices.Sorted(maps.Keys(t.prior))
	}

	rec := journal.Round{
		Seq:        seq,
		FlowToken:  t.flowToken,
		Attempt:    t.attempt,
		ActionType: t.action.Type(),
		Action:     t.action,
		Stores:     participants,
	}

	d.logger.Debug("round started",
		"flow_token", t.flowToken,
		"seq", seq,
		"attempt", t.attempt,
		"action_type", rec.ActionType,
		"stores", len(participants))

	res, err := h.run(ctx, stores, t.action, t.prior, t.extra)
	if err != nil {
		rec.Status = journal.StatusFailed
		rec.Error = err.Error()
		d.record(ctx, rec)

		d.logger.Warn("round failed",
			"flow_token", t.flowToken,
			"seq", seq,
			"attempt", t.attempt,
			"error", err)

		if rerr := d.pending.Reject(t.flowToken, err); rerr != nil {
			d.logger.Error("failed to settle dispatch", "flow_token", t.flowToken, "error", rerr)
		}
		return
	}

	changed := d.commit(res.stores)
	d.notify(changed)

	rec.Changed = changed
	rec.Paused = slices.Sorted(maps.Keys(res.paused))

	if len(res.paused) == 0 {
		rec.Status = journal.StatusCommitted
		d.record(ctx, rec)

		d.logger.Debug("round committed",
			"flow_token", t.flowToken,
			"seq", seq,
			"changed", changed)

		if rerr := d.pending.Resolve(t.flowToken, d); rerr != nil {
			d.logger.Error("failed to settle dispatch", "flow_token", t.flowToken, "error", rerr)
		}
		return
	}

	rec.Status = journal.StatusPaused
	d.record(ctx, rec)

	d.logger.Debug("round paused",
		"flow_token", t.flowToken,
		"seq", seq,
		"changed", changed,
		"paused", rec.Paused)

	resumes := make([]future.Awaitable, 0, len(res.paused))
	for _, pp := range res.paused {
		resumes = append(resumes, pp.Resume)
	}
	next := roundTask{
		flowToken: t.flowToken,
		action:    t.action,
		attempt:   t.attempt + 1,
		prior:     res.paused,
	}
	go func() {
		<-future.Settled(resumes...)
		d.enqueue(next)
	}()
}
