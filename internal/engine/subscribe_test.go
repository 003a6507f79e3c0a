package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/multistore/internal/ir"
)

func TestSubscribeTo_CalledOncePerChange(t *testing.T) {
	d := mustDispatcher(t, map[string]any{"counter": counterStore(), "static": "x"})

	var counterStates []any
	_, err := d.SubscribeTo("counter", func(s any) { counterStates = append(counterStates, s) })
	require.NoError(t, err)

	var staticCalls int
	_, err = d.SubscribeTo("static", func(any) { staticCalls++ })
	require.NoError(t, err)

	for _, action := range []ir.IRObject{inc(), ir.NewAction("NOOP"), inc()} {
		_, err := d.DispatchAndWait(bg, action)
		require.NoError(t, err)
	}

	assert.Equal(t, []any{1, 2}, counterStates)
	assert.Equal(t, 0, staticCalls, "unchanged stores never notify")
}

func TestSubscribeTo_OrderOfSubscription(t *testing.T) {
	d := mustDispatcher(t, map[string]any{"counter": counterStore()})

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		_, err := d.SubscribeTo("counter", func(any) { order = append(order, name) })
		require.NoError(t, err)
	}

	_, err := d.DispatchAndWait(bg, inc())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSubscribeTo_Errors(t *testing.T) {
	d := mustDispatcher(t, map[string]any{"counter": counterStore()})

	_, err := d.SubscribeTo("missing", func(any) {})
	assert.True(t, IsUnknownStore(err))
	assert.Equal(t, string(ErrCodeUnknownStore), Code(err))

	_, err = d.SubscribeTo("counter", nil)
	assert.True(t, IsInvalidArgument(err))

	_, err = d.SubscribeTo("", func(any) {})
	assert.True(t, IsInvalidArgument(err))
}

func TestUnsubscribe(t *testing.T) {
	d := mustDispatcher(t, map[string]any{"counter": counterStore()})

	calls := 0
	unsubscribe, err := d.SubscribeTo("counter", func(any) { calls++ })
	require.NoError(t, err)

	_, err = d.DispatchAndWait(bg, inc())
	require.NoError(t, err)

	require.NoError(t, unsubscribe())
	err = unsubscribe()
	assert.True(t, IsAlreadyUnsubscribed(err))

	_, err = d.DispatchAndWait(bg, inc())
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "no calls after unsubscribe")
}

func TestSubscribeToAll(t *testing.T) {
	d := mustDispatcher(t, map[string]any{"counter": counterStore(), "static": "x"})

	var snapshots []map[string]any
	unsubscribe, err := d.SubscribeToAll(func(states map[string]any) {
		snapshots = append(snapshots, states)
	})
	require.NoError(t, err)

	_, err = d.DispatchAndWait(bg, inc())
	require.NoError(t, err)
	_, err = d.DispatchAndWait(bg, ir.NewAction("NOOP"))
	require.NoError(t, err)

	require.Len(t, snapshots, 1, "rounds without changes do not notify")
	assert.Equal(t, map[string]any{"counter": 1, "static": "x"}, snapshots[0])

	require.NoError(t, unsubscribe())
	assert.True(t, IsAlreadyUnsubscribed(unsubscribe()))

	_, err = d.SubscribeToAll(nil)
	assert.True(t, IsInvalidArgument(err))
}

func TestSubscriber_PanicIsContained(t *testing.T) {
	d := mustDispatcher(t, map[string]any{"counter": counterStore()})

	_, err := d.SubscribeTo("counter", func(any) { panic("subscriber bug") })
	require.NoError(t, err)
	var after []any
	_, err = d.SubscribeTo("counter", func(s any) { after = append(after, s) })
	require.NoError(t, err)

	_, err = d.DispatchAndWait(bg, inc())
	require.NoError(t, err)
	assert.Equal(t, []any{1}, after, "later subscribers still run")
	assert.Equal(t, 1, mustState(t, d, "counter"))
}

func TestSubscriber_MayDispatch(t *testing.T) {
	d := mustDispatcher(t, map[string]any{"counter": counterStore()})

	done := make(chan struct{})
	_, err := d.SubscribeTo("counter", func(s any) {
		if s == 1 {
			go func() {
				defer close(done)
				_, _ = d.DispatchAndWait(bg, inc())
			}()
		}
	})
	require.NoError(t, err)

	_, err = d.DispatchAndWait(bg, inc())
	require.NoError(t, err)
	<-done
	assert.Equal(t, 2, mustState(t, d, "counter"))
}
