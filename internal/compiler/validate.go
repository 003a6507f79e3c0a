package compiler

import (
	"fmt"
	"slices"
)

// Validation error codes (E100-E199)
const (
	ErrUnknownOp       = "E101" // op is not one of the known operations
	ErrOperand         = "E102" // missing, duplicate, or unexpected operand
	ErrAssignField     = "E103" // assign without a field
	ErrOperandType     = "E104" // literal operand has the wrong type for op
	ErrDuplicateName   = "E105" // store and static share a name
	ErrFloatForbidden  = "E106" // float values are not allowed
	ErrInvalidMerge    = "E107" // unknown merge strategy
	ErrMissingEmit     = "E108" // dispatch without an emit action type
	ErrNullState       = "E109" // initial state or static value is null
	ErrInitialType     = "E110" // initial state has the wrong type for op
	ErrUnexpectedField = "E111" // field has no meaning for op
)

// ValidationError represents a program validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var knownOps = []string{OpSet, OpAdd, OpAppend, OpAssign, OpFail, OpDispatch}

// Validate checks a compiled program for semantic errors.
// Returns all errors found (does not fail-fast).
func Validate(p *Program) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool)
	for _, s := range p.Stores {
		names[s.Name] = true
		errs = append(errs, validateStore(s)...)
	}
	for _, st := range p.Statics {
		field := "statics." + st.Name
		if names[st.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "name already used by a store", Code: ErrDuplicateName, Line: st.Pos.Line()})
		}
		if st.Value == nil {
			errs = append(errs, ValidationError{Field: field, Message: "static value must not be null", Code: ErrNullState, Line: st.Pos.Line()})
		}
	}

	return errs
}

func validateStore(s StoreDef) []ValidationError {
	var errs []ValidationError
	field := "stores." + s.Name
	line := s.Pos.Line()

	if s.Initial == nil {
		errs = append(errs, ValidationError{Field: field + ".initial", Message: "initial state must not be null", Code: ErrNullState, Line: line})
	}

	switch s.Merge {
	case MergeResumed, MergeLive, MergeAdd:
	default:
		errs = append(errs, ValidationError{Field: field + ".merge", Message: fmt.Sprintf("unknown merge strategy %q", s.Merge), Code: ErrInvalidMerge, Line: line})
	}

	// A set can change the state's type, after which the initial state says
	// nothing about later operations.
	typeKnown := true
	for i, u := range s.Updaters {
		ufield := fmt.Sprintf("%s.updaters[%d]", field, i)
		errs = append(errs, validateUpdater(u, ufield)...)

		if typeKnown && s.Initial != nil {
			if msg := initialMismatch(u.Op, s.Initial); msg != "" {
				errs = append(errs, ValidationError{Field: ufield, Message: msg, Code: ErrInitialType, Line: u.Pos.Line()})
			}
		}
		if u.Op == OpSet || u.Op == OpDispatch {
			typeKnown = false
		}
	}

	if s.Merge == MergeAdd {
		if _, ok := s.Initial.(int64); !ok && s.Initial != nil {
			errs = append(errs, ValidationError{Field: field + ".merge", Message: "add merge requires an integer state", Code: ErrInitialType, Line: line})
		}
	}

	return errs
}

func validateUpdater(u UpdaterDef, field string) []ValidationError {
	var errs []ValidationError
	line := u.Pos.Line()
	add := func(code, f, msg string) {
		errs = append(errs, ValidationError{Field: field + f, Message: msg, Code: code, Line: line})
	}

	if !slices.Contains(knownOps, u.Op) {
		add(ErrUnknownOp, ".op", fmt.Sprintf("unknown op %q", u.Op))
		return errs
	}

	hasFrom := u.From != ""
	switch u.Op {
	case OpSet, OpAdd, OpAppend, OpAssign:
		if u.HasValue == hasFrom {
			add(ErrOperand, "", fmt.Sprintf("%s needs exactly one of value or from", u.Op))
		}
	case OpFail:
		if u.HasValue || hasFrom {
			add(ErrOperand, "", "fail takes no operand")
		}
	case OpDispatch:
		if u.HasValue && hasFrom {
			add(ErrOperand, "", "dispatch takes at most one of value or from")
		}
	}

	if u.Op == OpAdd && u.HasValue {
		if _, ok := u.Value.(int64); !ok {
			add(ErrOperandType, ".value", "add needs an integer value")
		}
	}

	if u.Op == OpAssign && u.Field == "" {
		add(ErrAssignField, ".field", "assign needs a field")
	}
	if u.Op != OpAssign && u.Field != "" {
		add(ErrUnexpectedField, ".field", fmt.Sprintf("field has no meaning for %s", u.Op))
	}

	if u.Op == OpDispatch {
		if u.Emit == nil || u.Emit.Type() == "" {
			add(ErrMissingEmit, ".emit", "dispatch needs an emit action with a type")
		}
	} else if u.Emit != nil {
		add(ErrUnexpectedField, ".emit", fmt.Sprintf("emit has no meaning for %s", u.Op))
	}

	if u.Op != OpFail && u.Message != "" {
		add(ErrUnexpectedField, ".message", fmt.Sprintf("message has no meaning for %s", u.Op))
	}
	if (u.Op == OpFail || u.Op == OpDispatch) && u.Pause > 0 {
		add(ErrUnexpectedField, ".pause", fmt.Sprintf("pause has no meaning for %s", u.Op))
	}

	return errs
}

func initialMismatch(op string, initial any) string {
	switch op {
	case OpAdd:
		if _, ok := initial.(int64); !ok {
			return "add needs an integer state"
		}
	case OpAppend:
		if _, ok := initial.([]any); !ok {
			return "append needs a list state"
		}
	case OpAssign:
		if _, ok := initial.(map[string]any); !ok {
			return "assign needs an object state"
		}
	}
	return ""
}
