package expr

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

func binary(op string, x, y any) (any, error) {
	switch op {
	case "+":
		return add(x, y)
	case "-", "/", "%":
		return arith(op, x, y)
	case "*":
		return mul(x, y)
	case "==":
		return equal(x, y), nil
	case "!=":
		return !equal(x, y), nil
	case "<", "<=", ">", ">=":
		return compare(op, x, y)
	}
	return nil, fmt.Errorf("%w: operator %s", ErrUnsupported, op)
}

func add(x, y any) (any, error) {
	switch a := x.(type) {
	case string:
		if b, ok := y.(string); ok {
			return a + b, nil
		}
	case []any:
		if b, ok := y.([]any); ok {
			out := make([]any, 0, len(a)+len(b))
			return append(append(out, a...), b...), nil
		}
	default:
		if isNumber(x) && isNumber(y) {
			return arith("+", x, y)
		}
	}
	return nil, fmt.Errorf("%w: %s + %s", ErrType, typeName(x), typeName(y))
}

func mul(x, y any) (any, error) {
	if s, ok := x.(string); ok {
		if n, ok := y.(int64); ok {
			return repeat(s, n), nil
		}
	}
	if s, ok := y.(string); ok {
		if n, ok := x.(int64); ok {
			return repeat(s, n), nil
		}
	}
	if isNumber(x) && isNumber(y) {
		return arith("*", x, y)
	}
	return nil, fmt.Errorf("%w: %s * %s", ErrType, typeName(x), typeName(y))
}

func repeat(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, int(n))
}

// arith applies a numeric operator. Integer division yields an integer only
// when it is exact; modulo takes the sign of the divisor.
func arith(op string, x, y any) (any, error) {
	a, aInt := x.(int64)
	b, bInt := y.(int64)
	if aInt && bInt {
		switch op {
		case "+":
			return a + b, nil
		case "-":
			return a - b, nil
		case "*":
			return a * b, nil
		case "/":
			if b == 0 {
				return nil, ErrDivisionByZero
			}
			if a%b == 0 {
				return a / b, nil
			}
			return float64(a) / float64(b), nil
		case "%":
			if b == 0 {
				return nil, ErrDivisionByZero
			}
			r := a % b
			if r != 0 && (r < 0) != (b < 0) {
				r += b
			}
			return r, nil
		}
	}

	fa, ok1 := toFloat(x)
	fb, ok2 := toFloat(y)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: %s %s %s", ErrType, typeName(x), op, typeName(y))
	}
	switch op {
	case "+":
		return fa + fb, nil
	case "-":
		return fa - fb, nil
	case "*":
		return fa * fb, nil
	case "/":
		if fb == 0 {
			return nil, ErrDivisionByZero
		}
		return fa / fb, nil
	case "%":
		if fb == 0 {
			return nil, ErrDivisionByZero
		}
		r := math.Mod(fa, fb)
		if r != 0 && (r < 0) != (fb < 0) {
			r += fb
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrUnsupported, op)
}

func equal(x, y any) bool {
	if isNumber(x) && isNumber(y) {
		ai, aok := x.(int64)
		bi, bok := y.(int64)
		if aok && bok {
			return ai == bi
		}
		a, _ := toFloat(x)
		b, _ := toFloat(y)
		return a == b
	}
	switch a := x.(type) {
	case []any:
		b, ok := y.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case string, bool, nil:
		return x == y
	}
	return false
}

func compare(op string, x, y any) (bool, error) {
	var c int
	switch {
	case isNumber(x) && isNumber(y):
		ai, aok := x.(int64)
		bi, bok := y.(int64)
		if aok && bok {
			c = cmpOrdered(ai, bi)
		} else {
			a, _ := toFloat(x)
			b, _ := toFloat(y)
			c = cmpOrdered(a, b)
		}
	default:
		a, ok1 := x.(string)
		b, ok2 := y.(string)
		if !ok1 || !ok2 {
			return false, fmt.Errorf("%w: %s %s %s", ErrType, typeName(x), op, typeName(y))
		}
		c = strings.Compare(a, b)
	}
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func index(x, idx any) (any, error) {
	i, ok := idx.(int64)
	if !ok {
		return nil, fmt.Errorf("%w: index must be an integer, not %s", ErrType, typeName(idx))
	}
	switch v := x.(type) {
	case string:
		r := []rune(v)
		n, err := position(i, len(r))
		if err != nil {
			return nil, err
		}
		return string(r[n]), nil
	case []any:
		n, err := position(i, len(v))
		if err != nil {
			return nil, err
		}
		return v[n], nil
	}
	return nil, fmt.Errorf("%w: %s is not indexable", ErrType, typeName(x))
}

func position(i int64, length int) (int, error) {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, ErrIndex
	}
	return int(i), nil
}

// slice cuts a string or list; nil bounds mean the start or end, negative
// bounds count from the end and everything is clamped.
func slice(x, from, to any) (any, error) {
	var length int
	switch v := x.(type) {
	case string:
		length = utf8.RuneCountInString(v)
	case []any:
		length = len(v)
	default:
		return nil, fmt.Errorf("%w: %s is not sliceable", ErrType, typeName(x))
	}

	bound := func(b any, def int) (int, error) {
		if b == nil {
			return def, nil
		}
		i, ok := b.(int64)
		if !ok {
			return 0, fmt.Errorf("%w: slice bound must be an integer", ErrType)
		}
		if i < 0 {
			i += int64(length)
		}
		return int(min(max(i, 0), int64(length))), nil
	}
	lo, err := bound(from, 0)
	if err != nil {
		return nil, err
	}
	hi, err := bound(to, length)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		hi = lo
	}

	if s, ok := x.(string); ok {
		return string([]rune(s)[lo:hi]), nil
	}
	return append([]any(nil), x.([]any)[lo:hi]...), nil
}

// Truthy reports whether v counts as true in a condition.
func Truthy(v any) bool {
	switch x := normalize(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	}
	return true
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// normalize maps host values onto the evaluator's value set.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	case []any:
		return "list"
	}
	return fmt.Sprintf("%T", v)
}
