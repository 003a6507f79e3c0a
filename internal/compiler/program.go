package compiler

import (
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/multistore/internal/ir"
)

// Updater operations.
const (
	OpSet      = "set"
	OpAdd      = "add"
	OpAppend   = "append"
	OpAssign   = "assign"
	OpFail     = "fail"
	OpDispatch = "dispatch"
)

// Merge strategies.
const (
	MergeResumed = "resumed"
	MergeLive    = "live"
	MergeAdd     = "add"
)

// Program is a compiled store program.
type Program struct {
	Stores  []StoreDef
	Statics []StaticDef
}

// StoreDef declares one store.
type StoreDef struct {
	Name     string
	Initial  any
	Updaters []UpdaterDef
	Merge    string
	Pos      token.Pos
}

// StaticDef declares a store whose state never changes.
type StaticDef struct {
	Name  string
	Value any
	Pos   token.Pos
}

// UpdaterDef declares one generated updater.
type UpdaterDef struct {
	// On is the action type the updater reacts to. Empty reacts to all.
	On string

	Op string

	// Value is the literal operand; HasValue distinguishes an explicit null.
	Value    any
	HasValue bool

	// From names the action field that supplies the operand.
	From string

	// Field is the object key written by assign.
	Field string

	// Pause delays delivery of the computed state through the pause
	// capability.
	Pause time.Duration

	// Emit is the action dispatched by the dispatch op.
	Emit ir.IRObject

	// Message is the error text of the fail op.
	Message string

	Pos token.Pos
}

var updaterFields = map[string]bool{
	"on": true, "op": true, "value": true, "from": true,
	"field": true, "pause": true, "emit": true, "message": true,
}

// CompileProgram parses a CUE value into a Program.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func CompileProgram(v cue.Value) (*Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	p := &Program{}

	if storesVal := v.LookupPath(cue.ParsePath("stores")); storesVal.Exists() {
		iter, err := storesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			def, err := compileStore(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			p.Stores = append(p.Stores, def)
		}
	}

	if staticsVal := v.LookupPath(cue.ParsePath("statics")); staticsVal.Exists() {
		iter, err := staticsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			value, err := toGo(iter.Value(), "statics."+iter.Label())
			if err != nil {
				return nil, err
			}
			p.Statics = append(p.Statics, StaticDef{Name: iter.Label(), Value: value, Pos: iter.Value().Pos()})
		}
	}

	if len(p.Stores) == 0 && len(p.Statics) == 0 {
		return nil, &CompileError{
			Field:   "stores",
			Message: "program defines no stores",
			Pos:     v.Pos(),
		}
	}

	return p, nil
}

func compileStore(name string, v cue.Value) (StoreDef, error) {
	def := StoreDef{Name: name, Merge: MergeResumed, Pos: v.Pos()}
	field := "stores." + name

	initialVal := v.LookupPath(cue.ParsePath("initial"))
	if !initialVal.Exists() {
		return def, &CompileError{Field: field + ".initial", Message: "initial state is required", Pos: v.Pos()}
	}
	initial, err := toGo(initialVal, field+".initial")
	if err != nil {
		return def, err
	}
	def.Initial = initial

	if mergeVal := v.LookupPath(cue.ParsePath("merge")); mergeVal.Exists() {
		merge, err := mergeVal.String()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Merge = merge
	}

	updatersVal := v.LookupPath(cue.ParsePath("updaters"))
	if !updatersVal.Exists() {
		return def, nil
	}
	iter, err := updatersVal.List()
	if err != nil {
		return def, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		u, err := compileUpdater(iter.Value(), fmt.Sprintf("%s.updaters[%d]", field, i))
		if err != nil {
			return def, err
		}
		def.Updaters = append(def.Updaters, u)
	}

	return def, nil
}

func compileUpdater(v cue.Value, field string) (UpdaterDef, error) {
	u := UpdaterDef{Pos: v.Pos()}

	iter, err := v.Fields()
	if err != nil {
		return u, formatCUEError(err)
	}
	for iter.Next() {
		label, val := iter.Label(), iter.Value()
		if !updaterFields[label] {
			return u, &CompileError{Field: field + "." + label, Message: "unknown updater field", Pos: val.Pos()}
		}

		switch label {
		case "value":
			if u.Value, err = toGo(val, field+".value"); err != nil {
				return u, err
			}
			u.HasValue = true
		case "emit":
			emit, err := toGo(val, field+".emit")
			if err != nil {
				return u, err
			}
			if u.Emit, err = ir.ToObject(emit); err != nil {
				return u, &CompileError{Field: field + ".emit", Message: "emit must be an object", Pos: val.Pos()}
			}
		case "pause":
			s, err := val.String()
			if err != nil {
				return u, formatCUEError(err)
			}
			if u.Pause, err = time.ParseDuration(s); err != nil || u.Pause <= 0 {
				return u, &CompileError{Field: field + ".pause", Message: fmt.Sprintf("invalid pause duration %q", s), Pos: val.Pos()}
			}
		default:
			s, err := val.String()
			if err != nil {
				return u, formatCUEError(err)
			}
			switch label {
			case "on":
				u.On = s
			case "op":
				u.Op = s
			case "from":
				u.From = s
			case "field":
				u.Field = s
			case "message":
				u.Message = s
			}
		}
	}

	if u.Op == "" {
		return u, &CompileError{Field: field + ".op", Message: "op is required", Pos: v.Pos()}
	}
	return u, nil
}

// toGo converts a concrete CUE value to the Go form used for store states:
// int64, string, bool, nil, []any, and map[string]any.
func toGo(v cue.Value, field string) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return b, formatCUEError(err)
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "integer out of range", Pos: v.Pos()}
		}
		return i, nil
	case cue.FloatKind:
		return nil, &CompileError{Field: field, Message: "float values are not supported; use integers", Pos: v.Pos()}
	case cue.StringKind:
		s, err := v.String()
		return s, formatCUEError(err)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := []any{}
		for i := 0; iter.Next(); i++ {
			elem, err := toGo(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := map[string]any{}
		for iter.Next() {
			elem, err := toGo(iter.Value(), field+"."+iter.Label())
			if err != nil {
				return nil, err
			}
			out[iter.Label()] = elem
		}
		return out, nil
	default:
		return nil, &CompileError{Field: field, Message: "value must be concrete", Pos: v.Pos()}
	}
}
