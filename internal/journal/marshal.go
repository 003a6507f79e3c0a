package journal

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/multistore/internal/ir"
)

// marshalAction converts an action to canonical JSON TEXT for storage.
func marshalAction(action ir.IRObject) (string, error) {
	if action == nil {
		action = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(action)
	if err != nil {
		return "", fmt.Errorf("marshal action: %w", err)
	}
	return string(data), nil
}

// unmarshalAction parses canonical JSON TEXT to IRObject.
// Large integers survive because ir.IRObject decodes numbers as json.Number.
func unmarshalAction(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal action: %w", err)
	}
	return obj, nil
}

// marshalNames stores a list of store names as a sorted JSON array.
func marshalNames(names []string) (string, error) {
	sorted := slices.Sorted(slices.Values(names))
	if sorted == nil {
		sorted = []string{}
	}
	data, err := json.Marshal(sorted)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

func unmarshalNames(data string) ([]string, error) {
	names := []string{}
	if data == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	return names, nil
}
