package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/multistore/internal/ir"
)

func TestValidate_Valid(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"empty select", Select{}},
		{"pointer select", &Select{Limit: 3}},
		{"text field", Select{Filter: Equals{Field: FieldStatus, Value: ir.IRString("paused")}}},
		{"int field", Select{Filter: Equals{Field: FieldAttempt, Value: ir.IRInt(1)}}},
		{"includes", Select{Filter: Includes{Field: FieldChanged, Name: "counter"}}},
		{"seq after", Select{Filter: SeqAfter{Seq: 10}}},
		{"empty and", Select{Filter: And{}}},
		{"nested and", Select{Filter: And{Predicates: []Predicate{
			Equals{Field: FieldFlowToken, Value: ir.IRString("flow-1")},
			And{Predicates: []Predicate{Includes{Field: FieldStores, Name: "a"}}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Validate(tt.q))
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantMsg string
	}{
		{"nil query", nil, "nil query"},
		{"nil pointer", (*Select)(nil), "nil query"},
		{"negative limit", Select{Limit: -1}, "limit must not be negative"},
		{"unknown field", Select{Filter: Equals{Field: "action", Value: ir.IRString("x")}}, `unknown field "action"`},
		{"int for text", Select{Filter: Equals{Field: FieldStatus, Value: ir.IRInt(1)}}, "holds text"},
		{"text for int", Select{Filter: Equals{Field: FieldSeq, Value: ir.IRString("1")}}, "holds an integer"},
		{"null value", Select{Filter: Equals{Field: FieldStatus, Value: ir.IRNull{}}}, "unsupported value"},
		{"scalar includes", Select{Filter: Includes{Field: FieldStatus, Name: "x"}}, "not a list"},
		{"empty name", Select{Filter: Includes{Field: FieldPaused}}, "empty store name"},
		{"nested problem", Select{Filter: And{Predicates: []Predicate{
			Includes{Field: FieldStores, Name: "a"},
			Equals{Field: "bogus", Value: ir.IRString("x")},
		}}}, `unknown field "bogus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.q)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuery)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	err := Validate(Select{
		Limit: -2,
		Filter: And{Predicates: []Predicate{
			Equals{Field: "x", Value: ir.IRString("1")},
			Includes{Field: FieldChanged},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
	assert.Contains(t, err.Error(), `unknown field "x"`)
	assert.Contains(t, err.Error(), "empty store name")
}

func TestAll(t *testing.T) {
	a := Includes{Field: FieldStores, Name: "a"}
	b := SeqAfter{Seq: 1}

	assert.Nil(t, All())
	assert.Nil(t, All(nil, nil))
	assert.Equal(t, a, All(nil, a))
	assert.Equal(t, And{Predicates: []Predicate{a, b}}, All(a, nil, b))
}
