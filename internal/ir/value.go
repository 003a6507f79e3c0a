package ir

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf16"
)

// IRValue is a sealed interface over the permitted value types.
// Only IRNull, IRString, IRInt, IRFloat, IRBool, IRArray, and IRObject
// implement it.
type IRValue interface {
	irValue()
}

// IRNull is an explicit JSON null.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString is a string value.
type IRString string

func (IRString) irValue() {}

// IRInt is an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRFloat is a finite number with a fractional part, or one outside the
// int64 range. Whole numbers that fit int64 are always IRInt.
type IRFloat float64

func (IRFloat) irValue() {}

// IRBool is a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray is an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps string keys to values. Actions are IRObjects.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// IRPair is a key-value pair for IRObject construction.
type IRPair struct {
	Key   string
	Value IRValue
}

// O is a shorthand for IRPair.
// Example: NewObject(O("type", IRString("INC")), O("by", IRInt(2)))
func O(key string, value IRValue) IRPair {
	return IRPair{Key: key, Value: value}
}

// NewObject creates an IRObject from pairs.
func NewObject(pairs ...IRPair) IRObject {
	obj := make(IRObject, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which orders some keys differently.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// ToValue converts a plain Go value into an IRValue.
//
// Accepted inputs: nil, IRValue, strings, bools, numbers of every kind,
// json.Number, slices, arrays, maps with string or integer keys, pointers,
// and structs (converted through their JSON encoding, so json tags apply).
// Whole floats become IRInt, since decoders such as YAML and CUE hand back
// float64 for whole numbers. NaN, infinities, funcs, channels and complex
// numbers have no data representation and are errors.
func ToValue(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case float64:
		return fromFloat(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IRInt(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return fromFloat(f)
	case []byte:
		return IRString(base64.StdEncoding.EncodeToString(val)), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			ev, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = ev
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			ev, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = ev
		}
		return obj, nil
	default:
		return fromReflect(reflect.ValueOf(v))
	}
}

// fromReflect converts named and typed values: typed slices and maps,
// pointers, structs, and types defined over basic kinds.
func fromReflect(rv reflect.Value) (IRValue, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return IRNull{}, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return IRNull{}, nil
		}
		return ToValue(rv.Elem().Interface())
	case reflect.String:
		return IRString(rv.String()), nil
	case reflect.Bool:
		return IRBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IRInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return fromFloat(float64(n))
		}
		return IRInt(n), nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return IRString(base64.StdEncoding.EncodeToString(rv.Bytes())), nil
		}
		fallthrough
	case reflect.Array:
		arr := make(IRArray, rv.Len())
		for i := range rv.Len() {
			ev, err := ToValue(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = ev
		}
		return arr, nil
	case reflect.Map:
		obj := make(IRObject, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			ev, err := ToValue(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = ev
		}
		return obj, nil
	case reflect.Struct:
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", rv.Type(), err)
		}
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported type: %s", rv.Type())
	}
}

// mapKey renders a map key the way encoding/json does.
func mapKey(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	default:
		return "", fmt.Errorf("unsupported map key type: %s", k.Type())
	}
}

func fromFloat(f float64) (IRValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("number has no JSON form: %v", f)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return IRInt(int64(f)), nil
	}
	return IRFloat(f), nil
}

// ToGo converts an IRValue back into plain Go values: nil, string, int64,
// float64, bool, []any, and map[string]any.
func ToGo(v IRValue) any {
	switch val := v.(type) {
	case nil, IRNull:
		return nil
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRFloat:
		return float64(val)
	case IRBool:
		return bool(val)
	case IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToGo(elem)
		}
		return out
	default:
		return nil
	}
}

// ParseJSON decodes JSON text into an IRValue. Whole numbers become IRInt,
// every other number IRFloat.
func ParseJSON(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return ToValue(raw)
}

// UnmarshalJSON implements json.Unmarshaler for IRObject.
func (obj *IRObject) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	o, ok := v.(IRObject)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*obj = o
	return nil
}

// MarshalJSON implements json.Marshaler for IRObject using the canonical
// encoding, so keys always come out in RFC 8785 order.
func (obj IRObject) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(obj)
}

// MarshalJSON implements json.Marshaler for IRArray.
func (arr IRArray) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(arr)
}
