package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a value for substitution into command arguments.
func Format(v any) string {
	switch x := normalize(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return fmt.Sprint(v)
}

// Strings flattens a value into argument strings. Sequences contribute one
// string per element; any other value contributes itself.
func Strings(v any) []string {
	if seq, ok := normalize(v).([]any); ok {
		out := make([]string, len(seq))
		for i, e := range seq {
			out[i] = Format(e)
		}
		return out
	}
	return []string{Format(v)}
}
