package store

import "reflect"

// Same reports whether a and b are the same state.
//
// Reference kinds (maps, pointers, channels, funcs) compare by identity and
// slices by backing array and length, so an updater that returns the state it
// was given is recognised as a no-op even when the state is not comparable.
// Other comparable values compare with ==. Anything else is never the same.
func Same(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
