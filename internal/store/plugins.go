package store

import (
	"errors"
	"fmt"

	"github.com/roach88/multistore/internal/ir"
)

// ErrMissingCapability is returned when a capability is used but no
// middleware in the chain installed it.
var ErrMissingCapability = errors.New("missing capability")

// PauseFunc creates a suspension from a value or future.
type PauseFunc func(v any) Suspension

// StateFunc reads the live committed state of the current store.
type StateFunc func() (any, error)

// DispatchFunc applies a derived state to the current store and dispatches
// action as a new top-level dispatch, suspending until it completes.
type DispatchFunc func(derived any, action ir.IRObject) Suspension

// Plugins is the capability set handed to every middleware and updater.
//
// Plugins is an immutable value: a middleware that adds a capability derives
// a new value with one of the With methods and passes that to next. Layers
// further out never observe capabilities added further in.
type Plugins struct {
	updaterIndex int
	updaterCount int
	storeName    string
	hasName      bool
	currentState StateFunc
	pause        PauseFunc
	dispatch     DispatchFunc
	values       map[any]any
}

// NewPlugins returns the built-in capabilities for one updater invocation.
func NewPlugins(updaterIndex, updaterCount int) Plugins {
	return Plugins{updaterIndex: updaterIndex, updaterCount: updaterCount}
}

// UpdaterIndex is the position of the running updater in the store's full
// updater list.
func (p Plugins) UpdaterIndex() int { return p.updaterIndex }

// UpdaterCount is the length of the store's full updater list.
func (p Plugins) UpdaterCount() int { return p.updaterCount }

// StoreName returns the name of the store being updated.
func (p Plugins) StoreName() (string, error) {
	if !p.hasName {
		return "", fmt.Errorf("%w: store name", ErrMissingCapability)
	}
	return p.storeName, nil
}

// CurrentState returns the store's live committed state. While an action is
// paused, other actions may advance it past the state the updater received.
func (p Plugins) CurrentState() (any, error) {
	if p.currentState == nil {
		return nil, fmt.Errorf("%w: current state", ErrMissingCapability)
	}
	return p.currentState()
}

// Pause defers the rest of this store's update for the current action.
// v is a value or a future; the returned Suspension must be returned by the
// updater as its result.
func (p Plugins) Pause(v any) Suspension {
	if p.pause == nil {
		return Suspension{err: fmt.Errorf("%w: pause", ErrMissingCapability)}
	}
	return p.pause(v)
}

// Dispatch updates this store to derived and then dispatches action to every
// store as a new top-level dispatch. The current update pauses until that
// dispatch completes and resumes with the store's state at that point.
func (p Plugins) Dispatch(derived any, action ir.IRObject) Suspension {
	if p.dispatch == nil {
		return Suspension{err: fmt.Errorf("%w: dispatch", ErrMissingCapability)}
	}
	return p.dispatch(derived, action)
}

// Value returns a user capability stored with WithValue.
func (p Plugins) Value(key any) any {
	return p.values[key]
}

// WithStoreName returns a copy of p that knows the store name.
func (p Plugins) WithStoreName(name string) Plugins {
	p.storeName, p.hasName = name, true
	return p
}

// WithCurrentState returns a copy of p with the current state capability.
func (p Plugins) WithCurrentState(fn StateFunc) Plugins {
	p.currentState = fn
	return p
}

// WithPause returns a copy of p with the pause capability.
func (p Plugins) WithPause(fn PauseFunc) Plugins {
	p.pause = fn
	return p
}

// WithDispatch returns a copy of p with the dispatch capability.
func (p Plugins) WithDispatch(fn DispatchFunc) Plugins {
	p.dispatch = fn
	return p
}

// WithValue returns a copy of p carrying a user capability under key.
func (p Plugins) WithValue(key, value any) Plugins {
	values := make(map[any]any, len(p.values)+1)
	for k, v := range p.values {
		values[k] = v
	}
	values[key] = value
	p.values = values
	return p
}

// HasPause reports whether the pause capability is installed.
func (p Plugins) HasPause() bool { return p.pause != nil }
