package journal

import (
	"context"
	"fmt"

	"github.com/roach88/multistore/internal/ir"
)

// RecordRound inserts a round record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - recording the same round
// twice is silently ignored. Other constraint violations (e.g., a reused seq
// for a different round) still return errors.
func (j *Journal) RecordRound(ctx context.Context, r Round) error {
	action := r.Action
	if action == nil {
		action = ir.IRObject{}
	}
	actionJSON, err := marshalAction(action)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	digest, err := ir.ActionDigest(action)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}

	lists := make([]string, 3)
	for i, names := range [][]string{r.Stores, r.Changed, r.Paused} {
		if lists[i], err = marshalNames(names); err != nil {
			return fmt.Errorf("record round: %w", err)
		}
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO rounds
		(id, seq, flow_token, attempt, action_type, action, action_digest, status,
		 stores, changed, paused, error, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID(),
		r.Seq,
		r.FlowToken,
		r.Attempt,
		r.ActionType,
		actionJSON,
		digest,
		string(r.Status),
		lists[0],
		lists[1],
		lists[2],
		r.Error,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	return nil
}
