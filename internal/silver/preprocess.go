package silver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// Preprocess walks an arbitrary decoded payload and coerces numeric-looking
// strings to numbers. Clock strings stay strings, and values under ID-named
// keys that look like zero-padded game IDs are never touched. Applying it
// twice yields the same result as applying it once.
func Preprocess(v any) any {
	return preprocessValue(v, "")
}

// PreprocessRow applies the same coercion to one extracted row.
func PreprocessRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = preprocessValue(v, k)
	}
	return out
}

func preprocessValue(v any, key string) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = preprocessValue(item, k)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = preprocessValue(item, "")
		}
		return out
	case string:
		return coerceScalar(value, key)
	default:
		return v
	}
}

func coerceScalar(s, key string) any {
	if isPreservedIDKey(key) && isDigitsOnly(s) && len(s) >= 8 {
		return s
	}
	if validate.Clock(s) {
		return s
	}
	if !numericPattern.MatchString(s) {
		return s
	}

	if !strings.ContainsRune(s, '.') {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

func isPreservedIDKey(key string) bool {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case "GAME_ID", "GAMEID", "ID":
		return true
	default:
		return false
	}
}

func isDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
