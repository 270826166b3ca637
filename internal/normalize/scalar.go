package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float64 decodes a finite number from a JSON number, a Go numeric type or
// a numeric string such as "12.50". NaN and infinities report false.
func Float64(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Float64Or is Float64 with a fallback.
func Float64Or(raw any, fallback float64) float64 {
	if f, ok := Float64(raw); ok {
		return f
	}
	return fallback
}

// String renders a scalar as text. Strings pass through, numbers keep
// their JSON spelling and booleans become "true" or "false". nil, objects
// and arrays report false.
func String(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// StringOr is String with a fallback.
func StringOr(raw any, fallback string) string {
	if s, ok := String(raw); ok {
		return s
	}
	return fallback
}
