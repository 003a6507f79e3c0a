package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	p, err := compile(t, `
		stores: counter: {
			initial: 0
			merge: "add"
			updaters: [
				{on: "INC", op: "add", value: 1},
				{on: "ADD", op: "add", from: "n"},
				{on: "RESET", op: "set", value: "gone"},
				{on: "RESET", op: "append", value: 1},
			]
		}
		stores: profile: {
			initial: {}
			updaters: [
				{on: "NAME", op: "assign", field: "name", from: "name"},
				{on: "BAD", op: "fail", message: "nope"},
				{on: "SAVE", op: "dispatch", emit: {type: "SAVED"}},
			]
		}
		statics: version: 3
	`)
	require.NoError(t, err)
	assert.Empty(t, Validate(p))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"unknown op", `stores: s: {initial: 0, updaters: [{op: "mul", value: 2}]}`, ErrUnknownOp},
		{"missing operand", `stores: s: {initial: 0, updaters: [{op: "add"}]}`, ErrOperand},
		{"both operands", `stores: s: {initial: 0, updaters: [{op: "add", value: 1, from: "n"}]}`, ErrOperand},
		{"fail with operand", `stores: s: {initial: 0, updaters: [{op: "fail", value: 1}]}`, ErrOperand},
		{"assign without field", `stores: s: {initial: {}, updaters: [{op: "assign", value: 1}]}`, ErrAssignField},
		{"add string", `stores: s: {initial: 0, updaters: [{op: "add", value: "x"}]}`, ErrOperandType},
		{"duplicate name", `stores: s: {initial: 0}, statics: s: 1`, ErrDuplicateName},
		{"bad merge", `stores: s: {initial: 0, merge: "max"}`, ErrInvalidMerge},
		{"missing emit", `stores: s: {initial: 0, updaters: [{op: "dispatch"}]}`, ErrMissingEmit},
		{"emit without type", `stores: s: {initial: 0, updaters: [{op: "dispatch", emit: {id: 1}}]}`, ErrMissingEmit},
		{"null initial", `stores: s: {initial: null}`, ErrNullState},
		{"null static", `statics: s: null`, ErrNullState},
		{"append to int", `stores: s: {initial: 0, updaters: [{op: "append", value: 1}]}`, ErrInitialType},
		{"add merge on list", `stores: s: {initial: [], merge: "add"}`, ErrInitialType},
		{"field on set", `stores: s: {initial: 0, updaters: [{op: "set", value: 1, field: "x"}]}`, ErrUnexpectedField},
		{"pause on fail", `stores: s: {initial: 0, updaters: [{op: "fail", pause: "1s"}]}`, ErrUnexpectedField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := compile(t, tt.src)
			require.NoError(t, err)
			assert.Contains(t, codes(Validate(p)), tt.code)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	p, err := compile(t, `
		stores: a: {initial: 0, merge: "max", updaters: [{op: "mul", value: 2}]}
		statics: a: null
	`)
	require.NoError(t, err)

	errs := Validate(p)
	assert.ElementsMatch(t, []string{ErrInvalidMerge, ErrUnknownOp, ErrDuplicateName, ErrNullState}, codes(errs))
	for _, e := range errs {
		assert.Greater(t, e.Line, 0, "%s carries a line", e.Code)
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "stores.s.merge", Message: "bad", Code: ErrInvalidMerge, Line: 3}
	assert.Equal(t, "[E107] line 3: stores.s.merge: bad", e.Error())

	e.Line = 0
	assert.Equal(t, "[E107] stores.s.merge: bad", e.Error())
}
