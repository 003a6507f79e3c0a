package queryir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/multistore/internal/ir"
)

// ErrInvalidQuery is wrapped by every error Validate returns.
var ErrInvalidQuery = errors.New("invalid round query")

// Validate checks that every field a query references exists and that
// every literal has the field's type. Backends may rely on validated
// queries naming known fields only.
//
// All problems are reported in one error.
func Validate(q Query) error {
	v := &validator{}
	v.validateQuery(q)
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(v.problems, "; "))
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) add(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.add("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.add("nil query")
			return
		}
		v.validateSelect(*query)
	default:
		v.add("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.Limit < 0 {
		v.add("limit must not be negative, got %d", sel.Limit)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred)
	case Includes:
		v.validateIncludes(pred)
	case SeqAfter:
	case And:
		for _, child := range pred.Predicates {
			v.validatePredicate(child)
		}
	default:
		v.add("unknown predicate type %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	isInt, ok := ScalarFields[eq.Field]
	if !ok {
		v.add("unknown field %q", eq.Field)
		return
	}
	switch eq.Value.(type) {
	case ir.IRInt:
		if !isInt {
			v.add("field %q holds text, got an integer", eq.Field)
		}
	case ir.IRString:
		if isInt {
			v.add("field %q holds an integer, got text", eq.Field)
		}
	default:
		v.add("field %q compared to unsupported value %T", eq.Field, eq.Value)
	}
}

func (v *validator) validateIncludes(in Includes) {
	if !ListFields[in.Field] {
		v.add("field %q is not a list of store names", in.Field)
	}
	if in.Name == "" {
		v.add("field %q: empty store name", in.Field)
	}
}
