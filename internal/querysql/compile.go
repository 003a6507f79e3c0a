// Package querysql compiles round queries to parameterized SQLite.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/queryir"
)

// RoundColumns is the column list every compiled query selects, in scan
// order.
const RoundColumns = `id, seq, flow_token, attempt, action_type, action, status, stores, changed, paused, error`

// orderBy gives every query a total, deterministic order.
const orderBy = ` ORDER BY seq ASC, id COLLATE BINARY ASC`

// Compile converts a round query to SQL over the rounds table.
// Returns (sql, params, error).
//
// The query is validated first, so field names written into the SQL are
// always known columns. Values are never interpolated.
func Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, err
	}

	var sel queryir.Select
	switch query := q.(type) {
	case queryir.Select:
		sel = query
	case *queryir.Select:
		sel = *query
	}

	var b strings.Builder
	b.WriteString("SELECT " + RoundColumns + " FROM rounds")

	var params []any
	if sel.Filter != nil {
		where, whereParams, err := compilePredicate(sel.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE " + where)
		params = whereParams
	}

	b.WriteString(orderBy)
	if sel.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, sel.Limit)
	}
	return b.String(), params, nil
}

func compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		param, err := irValueToParam(pred.Value)
		if err != nil {
			return "", nil, fmt.Errorf("field %s: %w", pred.Field, err)
		}
		return pred.Field + " = ?", []any{param}, nil
	case queryir.Includes:
		// list columns hold JSON arrays of store names
		sql := fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(rounds.%s) WHERE json_each.value = ?)", pred.Field)
		return sql, []any{pred.Name}, nil
	case queryir.SeqAfter:
		return "seq > ?", []any{pred.Seq}, nil
	case queryir.And:
		return compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, p := range and.Predicates {
		sql, ps, err := compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", params, nil
}

// irValueToParam converts a scalar IR value to a SQL parameter.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
