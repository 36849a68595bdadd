package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns the canonical string form used for all value comparisons.
func String(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Strings coerces v into a list: nil is empty, a scalar becomes a one-item list.
func Strings(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			result = append(result, String(item))
		}
		return result
	default:
		return []string{String(v)}
	}
}

func Float(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case nil:
		return 0, false
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(String(v)), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}

// IsEmpty is the generic emptiness check: nil, "", "0", false, zero numbers and empty
// lists are empty. Numeric form controls opt out of the "0" case.
func IsEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == "0"
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	default:
		return false
	}
}

// Same compares two values by their canonical string forms.
func Same(a, b any) bool {
	return String(a) == String(b)
}
