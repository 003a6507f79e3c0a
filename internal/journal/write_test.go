package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/multistore/internal/ir"
)

func TestRecordRound_RoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	r := Round{
		Seq:        1,
		FlowToken:  "flow-1",
		ActionType: "ADD",
		Action:     ir.NewAction("ADD", ir.O("amount", ir.IRInt(9007199254740993))),
		Status:     StatusPaused,
		Stores:     []string{"b", "a"},
		Changed:    []string{"a"},
		Paused:     []string{"b"},
	}
	require.NoError(t, j.RecordRound(ctx, r))

	rounds, err := j.ReadRounds(ctx, "flow-1")
	require.NoError(t, err)
	require.Len(t, rounds, 1)

	got := rounds[0]
	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, StatusPaused, got.Status)
	assert.Equal(t, []string{"a", "b"}, got.Stores, "store lists are stored sorted")
	assert.Equal(t, []string{"a"}, got.Changed)
	assert.Equal(t, []string{"b"}, got.Paused)
	assert.Equal(t, ir.IRInt(9007199254740993), got.Action["amount"], "large integers keep full precision")
	assert.Equal(t, r.ID(), got.ID())
}

func TestRecordRound_Idempotent(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	r := testRound("flow-1", 0, 1, StatusCommitted)
	require.NoError(t, j.RecordRound(ctx, r))
	require.NoError(t, j.RecordRound(ctx, r), "recording the same round twice is a no-op")

	rounds, err := j.ReadRounds(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rounds, 1)
}

func TestRecordRound_SeqReusedByOtherRound(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	require.NoError(t, j.RecordRound(ctx, testRound("flow-1", 0, 1, StatusCommitted)))
	err := j.RecordRound(ctx, testRound("flow-2", 0, 1, StatusCommitted))
	assert.Error(t, err, "two different rounds cannot share a seq")
}

func TestRecordRound_FailedRound(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	r := testRound("flow-1", 0, 1, StatusFailed)
	r.Changed = nil
	r.Error = "UPDATER_FAILURE: store \"b\" updater 0: boom"
	require.NoError(t, j.RecordRound(ctx, r))

	rounds, err := j.ReadRounds(ctx, "flow-1")
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, StatusFailed, rounds[0].Status)
	assert.Equal(t, r.Error, rounds[0].Error)
	assert.Empty(t, rounds[0].Changed)
	assert.NotNil(t, rounds[0].Changed, "empty lists decode as empty, not nil")
}

func TestRecordRound_NilAction(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	r := testRound("flow-1", 0, 1, StatusCommitted)
	r.Action = nil
	require.NoError(t, j.RecordRound(ctx, r))

	rounds, err := j.ReadRounds(ctx, "flow-1")
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, ir.IRObject{}, rounds[0].Action)
}
