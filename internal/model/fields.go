package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidField is returned when a document field holds a value of the
// wrong type.
var ErrInvalidField = errors.New("model: invalid field")

// ErrUnknownField is returned by SetField for a key the entity does not have.
var ErrUnknownField = errors.New("model: unknown field")

// Fields is the flat, per-entity part of a persisted document: field name to
// number or boolean.
type Fields map[string]any

// Float returns the numeric value stored under key. ok is false when the key
// is absent. Numbers stored as strings are accepted.
func (f Fields) Float(key string) (v float32, ok bool, err error) {
	raw, ok := f[key]
	if !ok {
		return 0, false, nil
	}
	switch x := raw.(type) {
	case float32:
		return x, true, nil
	case float64:
		return float32(x), true, nil
	case int:
		return float32(x), true, nil
	case int64:
		return float32(x), true, nil
	case json.Number:
		p, err := strconv.ParseFloat(x.String(), 32)
		if err != nil {
			return 0, true, fmt.Errorf("%w: %q: %v", ErrInvalidField, key, err)
		}
		return float32(p), true, nil
	case string:
		p, err := strconv.ParseFloat(x, 32)
		if err != nil {
			return 0, true, fmt.Errorf("%w: %q: %v", ErrInvalidField, key, err)
		}
		return float32(p), true, nil
	}
	return 0, true, fmt.Errorf("%w: %q: want number, got %T", ErrInvalidField, key, raw)
}

// Bool returns the boolean value stored under key. ok is false when the key
// is absent. "true" and "false" strings are accepted.
func (f Fields) Bool(key string) (v bool, ok bool, err error) {
	raw, ok := f[key]
	if !ok {
		return false, false, nil
	}
	switch x := raw.(type) {
	case bool:
		return x, true, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, true, fmt.Errorf("%w: %q: %v", ErrInvalidField, key, err)
		}
		return b, true, nil
	}
	return false, true, fmt.Errorf("%w: %q: want bool, got %T", ErrInvalidField, key, raw)
}
