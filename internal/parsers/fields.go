package parsers

import (
	"fmt"
	"strconv"
)

// Defensive field extraction over loosely-typed tool output. Analysis tools
// disagree on field names and on whether numbers arrive as JSON numbers or
// strings, so every accessor here takes a fallback chain and returns a safe
// zero value instead of failing.

// stringField returns the first key whose value is a non-empty string.
func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// intField returns the first key holding something int-shaped: a JSON
// number, or a string of digits.
func intField(obj map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		case string:
			if i, err := strconv.Atoi(n); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

// floatField returns the first key holding a numeric value.
func floatField(obj map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// boolField returns the first key holding a bool.
func boolField(obj map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if b, ok := v.(bool); ok {
				return b, true
			}
		}
	}
	return false, false
}

// mapField returns the first key holding an object.
func mapField(obj map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if m, ok := v.(map[string]any); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// sliceField returns the first key holding an array.
func sliceField(obj map[string]any, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if s, ok := v.([]any); ok {
				return s, true
			}
		}
	}
	return nil, false
}

// asObject narrows an arbitrary decoded value to an object, returning an
// empty map for anything else so callers can chain accessors safely.
func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// stringify renders any scalar the way the summary panels print it.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}
