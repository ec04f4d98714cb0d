// Package payload navigates the nested JSON envelopes returned by the
// Cirrus API.
package payload

import (
	"fmt"
)

// Object is a decoded JSON object.
type Object = map[string]any

// MissingKeyError is returned when a navigation step finds no such field.
type MissingKeyError struct {
	Key string
}

// Error implements the error interface.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing key %q in response data", e.Key)
}

// Navigate descends data key by key and returns whatever value sits at the
// last key. A step whose level is not an object counts as a missing key.
func Navigate(data any, keys ...string) (any, error) {
	current := data
	for _, key := range keys {
		obj, ok := current.(Object)
		if !ok {
			return nil, &MissingKeyError{Key: key}
		}
		next, ok := obj[key]
		if !ok {
			return nil, &MissingKeyError{Key: key}
		}
		current = next
	}
	return current, nil
}

// NavigateObject is Navigate for a terminal value that must be an object.
func NavigateObject(data any, keys ...string) (Object, error) {
	v, err := Navigate(data, keys...)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("value at %q is %T, not an object", keys[len(keys)-1], v)
	}
	return obj, nil
}

// Items normalises an item field to a list. The remote sends either a list
// of objects, a single object, or null for an empty result.
func Items(v any) ([]Object, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Object:
		return []Object{t}, nil
	case []any:
		items := make([]Object, 0, len(t))
		for i, raw := range t {
			obj, ok := raw.(Object)
			if !ok {
				return nil, fmt.Errorf("item %d is %T, not an object", i, raw)
			}
			items = append(items, obj)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("item list is %T", v)
	}
}

// String returns the string at key, or "" when absent or null.
func String(obj Object, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
