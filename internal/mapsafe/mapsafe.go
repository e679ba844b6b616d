// Package mapsafe reads typed values out of loosely typed parameter maps,
// such as those decoded from YAML config or JSON request bodies.
package mapsafe

import (
	"encoding/json"
	"strconv"
)

// Get retrieves a typed value from m. Numbers are converted between int and
// float64 since YAML decodes integers as int and JSON decodes every number as
// float64. If the key is missing or the value cannot be converted, Get
// returns defaultValue.
func Get[T any](m map[string]any, key string, defaultValue T) T {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}

	switch any(defaultValue).(type) {
	case int:
		if n, ok := toFloat(val); ok {
			return any(int(n)).(T)
		}
	case float64:
		if n, ok := toFloat(val); ok {
			return any(n).(T)
		}
	case string:
		if s, ok := val.(string); ok {
			return any(s).(T)
		}
	case bool:
		switch x := val.(type) {
		case bool:
			return any(x).(T)
		case string:
			if b, err := strconv.ParseBool(x); err == nil {
				return any(b).(T)
			}
		}
	case []string:
		if list, ok := toStrings(val); ok {
			return any(list).(T)
		}
	default:
		if v, ok := val.(T); ok {
			return v
		}
	}

	return defaultValue
}

func toFloat(val any) (float64, bool) {
	switch x := val.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func toStrings(val any) ([]string, bool) {
	switch x := val.(type) {
	case []string:
		return x, true
	case string:
		return []string{x}, true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
