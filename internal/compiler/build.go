package compiler

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/roach88/multistore/internal/future"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

// Build validates p and turns it into the store map accepted by engine.New:
// a store.Spec per store and the raw value per static.
func Build(p *Program) (map[string]any, error) {
	if verrs := Validate(p); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	specs := make(map[string]any, len(p.Stores)+len(p.Statics))
	for _, s := range p.Stores {
		updaters := make([]store.Updater, len(s.Updaters))
		for i, def := range s.Updaters {
			updaters[i] = buildUpdater(def)
		}
		specs[s.Name] = store.Spec{
			InitialState: s.Initial,
			Updaters:     updaters,
			Merge:        buildMerge(s.Merge),
		}
	}
	for _, st := range p.Statics {
		specs[st.Name] = st.Value
	}
	return specs, nil
}

// Names returns every store and static name in sorted order.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.Stores)+len(p.Statics))
	for _, s := range p.Stores {
		names = append(names, s.Name)
	}
	for _, st := range p.Statics {
		names = append(names, st.Name)
	}
	slices.Sort(names)
	return names
}

func buildUpdater(def UpdaterDef) store.Updater {
	return func(_ context.Context, state any, action ir.IRObject, p store.Plugins) (any, error) {
		if def.On != "" && action.Type() != def.On {
			return state, nil
		}

		operand, err := def.operand(action)
		if err != nil {
			return nil, err
		}

		switch def.Op {
		case OpFail:
			msg := def.Message
			if msg == "" {
				msg = "fail"
			}
			return nil, errors.New(msg)
		case OpDispatch:
			derived := state
			if def.HasValue || def.From != "" {
				derived = operand
			}
			return p.Dispatch(derived, def.Emit), nil
		}

		next, err := apply(def, state, operand)
		if err != nil {
			return nil, err
		}
		if def.Pause > 0 {
			return p.Pause(delayed(next, def.Pause)), nil
		}
		return next, nil
	}
}

func (def UpdaterDef) operand(action ir.IRObject) (any, error) {
	if def.From == "" {
		return def.Value, nil
	}
	v, ok := action.Get(def.From)
	if !ok {
		return nil, fmt.Errorf("action %q has no field %q", action.Type(), def.From)
	}
	return v, nil
}

func apply(def UpdaterDef, state, operand any) (any, error) {
	switch def.Op {
	case OpSet:
		return operand, nil
	case OpAdd:
		s, ok := state.(int64)
		if !ok {
			return nil, fmt.Errorf("add: state has type %T, want integer", state)
		}
		n, ok := operand.(int64)
		if !ok {
			return nil, fmt.Errorf("add: operand has type %T, want integer", operand)
		}
		return s + n, nil
	case OpAppend:
		s, ok := state.([]any)
		if !ok {
			return nil, fmt.Errorf("append: state has type %T, want list", state)
		}
		return append(slices.Clip(s), operand), nil
	case OpAssign:
		s, ok := state.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("assign: state has type %T, want object", state)
		}
		out := maps.Clone(s)
		if out == nil {
			out = map[string]any{}
		}
		out[def.Field] = operand
		return out, nil
	default:
		return nil, fmt.Errorf("unknown op %q", def.Op)
	}
}

// delayed resolves with v after d. It is not tied to the round's context:
// a pause outlives the round that started it.
func delayed(v any, d time.Duration) *future.Future[any] {
	return future.Go(context.Background(), func(context.Context) (any, error) {
		t := time.NewTimer(d)
		defer t.Stop()
		<-t.C
		return v, nil
	})
}

func buildMerge(strategy string) store.MergeFunc {
	switch strategy {
	case MergeLive:
		return func(live, _ any, _ ir.IRObject) any { return live }
	case MergeAdd:
		return func(live, resumed any, _ ir.IRObject) any {
			l, lok := live.(int64)
			r, rok := resumed.(int64)
			if !lok || !rok {
				return resumed
			}
			return l + r
		}
	default:
		return nil
	}
}
