package queryir

import "github.com/roach88/multistore/internal/ir"

// Round fields that predicates may reference.
const (
	FieldSeq          = "seq"
	FieldFlowToken    = "flow_token"
	FieldAttempt      = "attempt"
	FieldActionType   = "action_type"
	FieldActionDigest = "action_digest"
	FieldStatus       = "status"

	FieldStores  = "stores"
	FieldChanged = "changed"
	FieldPaused  = "paused"
)

// ScalarFields maps each scalar field to whether it holds an integer.
var ScalarFields = map[string]bool{
	FieldSeq:          true,
	FieldFlowToken:    false,
	FieldAttempt:      true,
	FieldActionType:   false,
	FieldActionDigest: false,
	FieldStatus:       false,
}

// ListFields holds the fields that store a list of store names.
var ListFields = map[string]bool{
	FieldStores:  true,
	FieldChanged: true,
	FieldPaused:  true,
}

// Query selects journaled rounds.
//
// This is a sealed interface: only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate filters rounds.
//
// This is a sealed interface: only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Select returns the rounds matching Filter in seq order.
//
//	Select{
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: FieldActionType, Value: ir.IRString("INC")},
//	    Includes{Field: FieldChanged, Name: "counter"},
//	  }},
//	  Limit: 10,
//	}
type Select struct {
	Filter Predicate // nil matches every round
	Limit  int       // 0 returns every match
}

func (Select) queryNode() {}

// Equals holds when a scalar field equals Value. Integer fields take an
// ir.IRInt, text fields an ir.IRString.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// Includes holds when the list field contains Name.
type Includes struct {
	Field string
	Name  string
}

func (Includes) predicateNode() {}

// SeqAfter holds for rounds whose seq is greater than Seq.
type SeqAfter struct {
	Seq int64
}

func (SeqAfter) predicateNode() {}

// And holds when every predicate holds. An empty And always holds.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// All combines predicates with And, dropping nils. It returns nil when
// nothing is left and the predicate itself when only one is.
func All(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
