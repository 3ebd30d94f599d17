package common

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// IsBlank reports whether s is empty or consists only of control characters
// and spaces.
func IsBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > ' ' {
			return false
		}
	}

	return true
}

// IsMissing reports whether a value read from a document counts as absent:
// nil, or a blank string.
func IsMissing(v any) bool {
	if v == nil {
		return true
	}

	if s, ok := v.(string); ok {
		return IsBlank(s)
	}

	return false
}

// Stringify renders a decoded JSON value the way rule comparisons see it.
// Whole floats render without a fractional part ("50", not "50.0").
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// ToNumber converts numbers and numeric strings to float64.
// Surrounding whitespace in strings is ignored; anything else reports false.
func ToNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		start, end := 0, len(t)
		for start < end && t[start] <= ' ' {
			start++
		}

		for end > start && t[end-1] <= ' ' {
			end--
		}

		if start == end {
			return 0, false
		}

		f, err := strconv.ParseFloat(t[start:end], 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}
