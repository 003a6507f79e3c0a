package ir

import (
	"errors"
	"fmt"
	"reflect"
)

// TypeKey is the conventional discriminator field of an action.
const TypeKey = "type"

// InitActionType is the type of the action used to seed reducer stores.
const InitActionType = "@@multistore/INIT"

// ErrNotObject is returned by ToObject for anything that is not a key/value
// record.
var ErrNotObject = errors.New("action must be a key/value object")

// InitAction returns a fresh init action.
func InitAction() IRObject {
	return IRObject{TypeKey: IRString(InitActionType)}
}

// NewAction creates an action with the given type and extra fields.
func NewAction(typ string, fields ...IRPair) IRObject {
	obj := NewObject(fields...)
	obj[TypeKey] = IRString(typ)
	return obj
}

// ToObject converts a dispatched value into an action.
//
// Accepts IRObject and any map keyed by strings or integers, with nested
// values of any kind ToValue accepts. Anything else, including nil and nil
// maps, wraps ErrNotObject, as does a field value that has no data
// representation (a func or channel).
func ToObject(v any) (IRObject, error) {
	if obj, ok := v.(IRObject); ok {
		if obj == nil {
			return nil, fmt.Errorf("%w: got nil", ErrNotObject)
		}
		return obj, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}
	if rv.IsNil() {
		return nil, fmt.Errorf("%w: got nil", ErrNotObject)
	}
	iv, err := ToValue(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	return iv.(IRObject), nil
}

// Type returns the action's "type" field, or "" if absent or not a string.
func (obj IRObject) Type() string {
	s, _ := obj[TypeKey].(IRString)
	return string(s)
}

// GetString returns the field as a string.
func (obj IRObject) GetString(key string) (string, bool) {
	s, ok := obj[key].(IRString)
	return string(s), ok
}

// GetInt returns the field as an int64.
func (obj IRObject) GetInt(key string) (int64, bool) {
	n, ok := obj[key].(IRInt)
	return int64(n), ok
}

// Get returns the field converted to a plain Go value.
func (obj IRObject) Get(key string) (any, bool) {
	v, ok := obj[key]
	if !ok {
		return nil, false
	}
	return ToGo(v), true
}
