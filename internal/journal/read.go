package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/queryir"
	"github.com/roach88/multistore/internal/querysql"
)

// Query returns the rounds matching q, in seq order.
//
// Returns an empty slice (not nil) if nothing matches.
func (j *Journal) Query(ctx context.Context, q queryir.Query) ([]Round, error) {
	query, args, err := querysql.Compile(q)
	if err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	rounds := []Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return rounds, nil
}

// ReadRounds returns the rounds of one dispatch call, or of every call when
// flowToken is empty.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
func (j *Journal) ReadRounds(ctx context.Context, flowToken string) ([]Round, error) {
	sel := queryir.Select{}
	if flowToken != "" {
		sel.Filter = queryir.Equals{Field: queryir.FieldFlowToken, Value: ir.IRString(flowToken)}
	}
	return j.Query(ctx, sel)
}

// Flows returns the distinct flow tokens in the order their first round ran.
func (j *Journal) Flows(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT flow_token
		FROM rounds
		GROUP BY flow_token
		ORDER BY MIN(seq) ASC, flow_token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query flows: %w", err)
	}
	defer rows.Close()

	flows := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		flows = append(flows, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flows: %w", err)
	}
	return flows, nil
}

// scanRound reads one row selected with querysql.RoundColumns.
func scanRound(rows *sql.Rows) (Round, error) {
	var (
		r                       Round
		id, status              string
		action                  string
		stores, changed, paused string
	)
	if err := rows.Scan(&id, &r.Seq, &r.FlowToken, &r.Attempt, &r.ActionType, &action, &status, &stores, &changed, &paused, &r.Error); err != nil {
		return Round{}, fmt.Errorf("scan round: %w", err)
	}
	r.Status = Status(status)

	var err error
	if r.Action, err = unmarshalAction(action); err != nil {
		return Round{}, fmt.Errorf("round %s: %w", id, err)
	}
	if r.Stores, err = unmarshalNames(stores); err != nil {
		return Round{}, fmt.Errorf("round %s: %w", id, err)
	}
	if r.Changed, err = unmarshalNames(changed); err != nil {
		return Round{}, fmt.Errorf("round %s: %w", id, err)
	}
	if r.Paused, err = unmarshalNames(paused); err != nil {
		return Round{}, fmt.Errorf("round %s: %w", id, err)
	}
	return r, nil
}
