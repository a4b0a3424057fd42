package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type builtin struct {
	minArgs, maxArgs int
	fn               func(args []any) (any, error)
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"len":     {1, 1, builtinLen},
		"str":     {1, 1, func(a []any) (any, error) { return Format(a[0]), nil }},
		"int":     {1, 1, builtinInt},
		"float":   {1, 1, builtinFloat},
		"upper":   {1, 1, stringFunc(strings.ToUpper)},
		"lower":   {1, 1, stringFunc(strings.ToLower)},
		"trim":    {1, 1, stringFunc(strings.TrimSpace)},
		"join":    {1, 2, builtinJoin},
		"split":   {1, 2, builtinSplit},
		"replace": {3, 3, builtinReplace},
	}
}

// call checks the argument count before running the builtin.
func (b builtin) call(name string) func(args []any) (any, error) {
	return func(args []any) (any, error) {
		if len(args) < b.minArgs || len(args) > b.maxArgs {
			return nil, fmt.Errorf("%w: %s takes %d to %d arguments, got %d", ErrType, name, b.minArgs, b.maxArgs, len(args))
		}
		return b.fn(args)
	}
}

func stringFunc(f func(string) string) func([]any) (any, error) {
	return func(a []any) (any, error) { return f(Format(a[0])), nil }
}

func builtinLen(a []any) (any, error) {
	switch v := a[0].(type) {
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	case []any:
		return int64(len(v)), nil
	}
	return nil, fmt.Errorf("%w: len of %s", ErrType, typeName(a[0]))
}

func builtinInt(a []any) (any, error) {
	switch v := a[0].(type) {
	case int64:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: cannot convert %v to int", ErrType, v)
		}
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid int %q", ErrType, v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: int of %s", ErrType, typeName(a[0]))
}

func builtinFloat(a []any) (any, error) {
	switch v := a[0].(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid float %q", ErrType, v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: float of %s", ErrType, typeName(a[0]))
}

func builtinJoin(a []any) (any, error) {
	seq, ok := a[0].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: join of %s", ErrType, typeName(a[0]))
	}
	sep := " "
	if len(a) == 2 {
		sep = Format(a[1])
	}
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = Format(v)
	}
	return strings.Join(parts, sep), nil
}

func builtinSplit(a []any) (any, error) {
	s := Format(a[0])
	var parts []string
	if len(a) == 2 {
		sep := Format(a[1])
		if sep == "" {
			return nil, fmt.Errorf("%w: empty separator", ErrType)
		}
		parts = strings.Split(s, sep)
	} else {
		parts = strings.Fields(s)
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func builtinReplace(a []any) (any, error) {
	return strings.ReplaceAll(Format(a[0]), Format(a[1]), Format(a[2])), nil
}
