package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

func pauseWith(v any) store.Updater {
	return func(_ context.Context, _ any, _ ir.IRObject, p store.Plugins) (any, error) {
		return p.Pause(v), nil
	}
}

func TestPause_RecordsPausePoint(t *testing.T) {
	var points []PausePoint
	mws := []store.Middleware{Pause(func(pp PausePoint) { points = append(points, pp) })}

	out, err := invoke(mws, pauseWith(future.Resolved(5)), 2, 4, "input")
	require.NoError(t, err)
	assert.True(t, out.IsSuspended())

	require.Len(t, points, 1)
	assert.Equal(t, 2, points[0].UpdaterIndex)
	assert.Equal(t, "input", points[0].State)

	v, err := points[0].Resume.Await(bg)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestPause_PlainValue(t *testing.T) {
	var points []PausePoint
	mws := []store.Middleware{Pause(func(pp PausePoint) { points = append(points, pp) })}

	_, err := invoke(mws, pauseWith(9), 0, 1, 0)
	require.NoError(t, err)
	require.Len(t, points, 1)

	v, err := points[0].Resume.Await(bg)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestPause_NotCalledWithoutPause(t *testing.T) {
	called := false
	mws := []store.Middleware{Pause(func(PausePoint) { called = true })}

	out, err := invoke(mws, addN(1, nil), 0, 1, 1)
	require.NoError(t, err)
	assert.False(t, out.IsSuspended())
	assert.Equal(t, 2, out.State())
	assert.False(t, called)
}

func TestPause_ErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	called := false
	mws := []store.Middleware{Pause(func(PausePoint) { called = true })}
	fail := func(context.Context, any, ir.IRObject, store.Plugins) (any, error) { return nil, boom }

	_, err := invoke(mws, fail, 0, 1, 1)
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestResumeAt(t *testing.T) {
	pp := PausePoint{Resume: future.Resolved[any](50), UpdaterIndex: 1, State: 7}
	mws := []store.Middleware{ResumeAt(pp)}

	calls := 0
	out, err := invoke(mws, addN(1, &calls), 0, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, out.State(), "earlier updaters are skipped")

	out, err = invoke(mws, addN(1, &calls), 1, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, out.State(), "the paused updater yields the resumed state")

	out, err = invoke(mws, addN(1, &calls), 2, 3, 50)
	require.NoError(t, err)
	assert.Equal(t, 51, out.State())

	assert.Equal(t, 1, calls, "only updaters after the paused index run")
}

func TestResumeAt_Rejected(t *testing.T) {
	boom := errors.New("boom")
	pp := PausePoint{Resume: future.Rejected[any](boom), UpdaterIndex: 0}

	_, err := invoke([]store.Middleware{ResumeAt(pp)}, identity, 0, 1, 0)
	assert.ErrorIs(t, err, boom)
}

// TestResumeAt_StorePipeline checks that a store paused at index 1 runs
// updaters 0 and 1 once in the first round and only 2..N-1 in the second.
func TestResumeAt_StorePipeline(t *testing.T) {
	counts := make([]int, 4)
	counting := func(i int, n int) store.Updater {
		return store.Typed(func(_ context.Context, s int, _ ir.IRObject, p store.Plugins) (any, error) {
			counts[i]++
			if i == 1 {
				return p.Pause(future.Resolved(s + 100)), nil
			}
			return s + n, nil
		})
	}
	s := store.MustNew(store.Spec{
		InitialState: 0,
		Updaters:     []store.Updater{counting(0, 1), counting(1, 0), counting(2, 10), counting(3, 1000)},
	})

	var pp PausePoint
	first, suspended, err := s.Dispatch(bg, act("GO"), Pause(func(p PausePoint) { pp = p }))
	require.NoError(t, err)
	require.True(t, suspended)
	assert.Same(t, s, first)
	assert.Equal(t, []int{1, 1, 0, 0}, counts)
	assert.Equal(t, 1, pp.UpdaterIndex)
	assert.Equal(t, 1, pp.State)

	second, suspended, err := s.Dispatch(bg, act("GO"), Pause(func(PausePoint) {}), ResumeAt(pp))
	require.NoError(t, err)
	require.False(t, suspended)
	assert.Equal(t, 1111, second.State())
	assert.Equal(t, []int{1, 1, 1, 1}, counts)
}

func TestResumeAt_LastUpdater(t *testing.T) {
	s := store.MustNew(store.Spec{InitialState: 0, Updaters: []store.Updater{pauseWith(5)}})

	var pp PausePoint
	_, suspended, err := s.Dispatch(bg, act("GO"), Pause(func(p PausePoint) { pp = p }))
	require.NoError(t, err)
	require.True(t, suspended)

	next, suspended, err := s.Dispatch(bg, act("GO"), Pause(func(PausePoint) {}), ResumeAt(pp))
	require.NoError(t, err)
	assert.False(t, suspended)
	assert.Equal(t, 5, next.State())
}

func TestPauseWithMerge(t *testing.T) {
	base := 10
	pp := PausePoint{Resume: future.Resolved[any](15), UpdaterIndex: 0, State: base, Base: base}
	merge := func(live, resumed any, _ ir.IRObject) any {
		return live.(int) + resumed.(int) - base
	}

	withLive := func(live any, merge store.MergeFunc) []store.Middleware {
		return []store.Middleware{
			StoreName("counter"),
			CurrentState(func(string) (any, error) { return live, nil }),
			PauseWithMerge(pp, merge),
			ResumeAt(pp),
		}
	}

	t.Run("live unchanged keeps resumed", func(t *testing.T) {
		out, err := invoke(withLive(10, merge), identity, 0, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 15, out.State())
	})

	t.Run("live diverged merges", func(t *testing.T) {
		out, err := invoke(withLive(12, merge), identity, 0, 1, 12)
		require.NoError(t, err)
		assert.Equal(t, 17, out.State())
	})

	t.Run("nil merge overwrites", func(t *testing.T) {
		out, err := invoke(withLive(12, nil), identity, 0, 1, 12)
		require.NoError(t, err)
		assert.Equal(t, 15, out.State())
	})

	t.Run("other indexes untouched", func(t *testing.T) {
		out, err := invoke(withLive(12, merge), addN(1, nil), 1, 2, 15)
		require.NoError(t, err)
		assert.Equal(t, 16, out.State())
	})
}
