package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/queryir"
)

func TestReadRounds_OrderedBySeq(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	// Insert out of order
	require.NoError(t, j.RecordRound(ctx, testRound("flow-a", 1, 3, StatusCommitted)))
	require.NoError(t, j.RecordRound(ctx, testRound("flow-b", 0, 2, StatusCommitted)))
	require.NoError(t, j.RecordRound(ctx, testRound("flow-a", 0, 1, StatusPaused)))

	all, err := j.ReadRounds(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].Seq, all[1].Seq, all[2].Seq})

	flowA, err := j.ReadRounds(ctx, "flow-a")
	require.NoError(t, err)
	require.Len(t, flowA, 2)
	assert.Equal(t, 0, flowA[0].Attempt)
	assert.Equal(t, 1, flowA[1].Attempt)
}

func TestReadRounds_EmptyNotNil(t *testing.T) {
	j := openTestJournal(t)

	rounds, err := j.ReadRounds(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, rounds)
	assert.Empty(t, rounds)
}

func TestQuery_ByActionDigest(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	other := testRound("flow-2", 0, 2, StatusCommitted)
	other.Action = ir.NewAction("DEC")
	other.ActionType = "DEC"

	require.NoError(t, j.RecordRound(ctx, testRound("flow-1", 0, 1, StatusCommitted)))
	require.NoError(t, j.RecordRound(ctx, other))
	require.NoError(t, j.RecordRound(ctx, testRound("flow-3", 0, 3, StatusCommitted)))

	digest, err := ir.ActionDigest(ir.NewAction("INC"))
	require.NoError(t, err)
	rounds, err := j.Query(ctx, queryir.Select{
		Filter: queryir.Equals{Field: queryir.FieldActionDigest, Value: ir.IRString(digest)},
	})
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, "flow-1", rounds[0].FlowToken)
	assert.Equal(t, "flow-3", rounds[1].FlowToken)
}

func TestFlows_OrderedByFirstRound(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	require.NoError(t, j.RecordRound(ctx, testRound("flow-b", 0, 1, StatusPaused)))
	require.NoError(t, j.RecordRound(ctx, testRound("flow-a", 0, 2, StatusCommitted)))
	require.NoError(t, j.RecordRound(ctx, testRound("flow-b", 1, 3, StatusCommitted)))

	flows, err := j.Flows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"flow-b", "flow-a"}, flows)
}

func TestQuery_Filters(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	paused := testRound("flow-1", 0, 1, StatusPaused)
	paused.Changed = nil
	paused.Paused = []string{"counter"}
	require.NoError(t, j.RecordRound(ctx, paused))
	require.NoError(t, j.RecordRound(ctx, testRound("flow-2", 0, 2, StatusCommitted)))
	require.NoError(t, j.RecordRound(ctx, testRound("flow-1", 1, 3, StatusCommitted)))

	tests := []struct {
		name string
		q    queryir.Select
		want []int64
	}{
		{
			name: "everything",
			q:    queryir.Select{},
			want: []int64{1, 2, 3},
		},
		{
			name: "status",
			q:    queryir.Select{Filter: queryir.Equals{Field: queryir.FieldStatus, Value: ir.IRString("committed")}},
			want: []int64{2, 3},
		},
		{
			name: "paused store",
			q:    queryir.Select{Filter: queryir.Includes{Field: queryir.FieldPaused, Name: "counter"}},
			want: []int64{1},
		},
		{
			name: "changed store in one flow",
			q: queryir.Select{Filter: queryir.All(
				queryir.Equals{Field: queryir.FieldFlowToken, Value: ir.IRString("flow-1")},
				queryir.Includes{Field: queryir.FieldChanged, Name: "counter"},
			)},
			want: []int64{3},
		},
		{
			name: "after seq with limit",
			q:    queryir.Select{Filter: queryir.SeqAfter{Seq: 1}, Limit: 1},
			want: []int64{2},
		},
		{
			name: "unknown store",
			q:    queryir.Select{Filter: queryir.Includes{Field: queryir.FieldStores, Name: "missing"}},
			want: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rounds, err := j.Query(ctx, tt.q)
			require.NoError(t, err)
			got := []int64{}
			for _, r := range rounds {
				got = append(got, r.Seq)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery_RejectsInvalid(t *testing.T) {
	j := openTestJournal(t)

	_, err := j.Query(context.Background(), queryir.Select{
		Filter: queryir.Equals{Field: "action", Value: ir.IRString("x")},
	})
	assert.ErrorIs(t, err, queryir.ErrInvalidQuery)
}
