package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vars(m map[string]any) Lookup {
	return func(name string) (any, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestEval(t *testing.T) {
	env := vars(map[string]any{
		"x":       int64(5),
		"name":    "twill",
		"__url__": "http://example.com/",
		"items":   []string{"a", "b", "c"},
		"n":       3,
	})

	tests := []struct {
		src  string
		want any
	}{
		{"2+2", int64(4)},
		{"x*2 - 1", int64(9)},
		{"7/2", 3.5},
		{"8/2", int64(4)},
		{"-7 % 3", int64(2)},
		{"7 % -3", int64(-2)},
		{"1.5 + 1", 2.5},
		{"'a' + \"b\"", "ab"},
		{"'ab' * 2", "abab"},
		{"3 * 'x'", "xxx"},
		{"name", "twill"},
		{"__url__", "http://example.com/"},
		{"x > 3 && name == 'twill'", true},
		{"x < 3 || false", false},
		{"!x", false},
		{"1 == 1.0", true},
		{"'a' < 'b'", true},
		{"name[0]", "t"},
		{"name[-1]", "l"},
		{"name[1:3]", "wi"},
		{"name[:-2]", "twi"},
		{"items[1]", "b"},
		{"items[1:]", []any{"b", "c"}},
		{"len(items)", int64(3)},
		{"len(name)", int64(5)},
		{"n + 1", int64(4)},
		{"upper(name)", "TWILL"},
		{"str(x) + 'px'", "5px"},
		{"int('42') + 1", int64(43)},
		{"float('0.5')", 0.5},
		{"join(items, ',')", "a,b,c"},
		{"join(split('a b  c'))", "a b c"},
		{"split('a-b', '-')", []any{"a", "b"}},
		{"replace(name, 'ill', 'ig')", "twig"},
		{"True", true},
		{"None", nil},
		{`'it\'s'`, "it's"},
		{`"don't"`, "don't"},
		{"0x10", int64(16)},
		{"x > 3 and not (name == 'x')", true},
		{"x < 3 or name", true},
		{"x > 3 ? 'big' : 'small'", "big"},
		{"'b' in items", true},
		{"[1, 2] + ['a']", []any{int64(1), int64(2), "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Eval(tt.src, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalShortCircuit(t *testing.T) {
	for _, src := range []string{"false && missing", "false and 1/0", "None ? missing : false"} {
		got, err := Eval(src, nil)
		require.NoError(t, err, src)
		assert.Equal(t, false, got, src)
	}

	for _, src := range []string{"true || missing", "1 or 1/0"} {
		got, err := Eval(src, nil)
		require.NoError(t, err, src)
		assert.Equal(t, true, got, src)
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"1/0", ErrDivisionByZero},
		{"1 % 0", ErrDivisionByZero},
		{"1.0 / 0", ErrDivisionByZero},
		{"'a' + 1", ErrType},
		{"'abc'[5]", ErrIndex},
		{"len(1)", ErrType},
		{"int('x')", ErrType},
		{"'a' < 1", ErrType},
		{"join('a')", ErrType},
		{"len()", ErrType},
		{"", ErrSyntax},
		{"2 +", ErrSyntax},
		{"(1", ErrSyntax},
		{"1 2", ErrSyntax},
		{"'abc'.upper()", ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Eval(tt.src, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvalUndefined(t *testing.T) {
	for _, src := range []string{"nope", "nope + 1", "__init__.py", "nope()", "1 + nope"} {
		_, err := Eval(src, nil)
		var undef *UndefinedError
		require.ErrorAs(t, err, &undef, src)
	}

	_, err := Eval("os.path", nil)
	var undef *UndefinedError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, "os", undef.Name)
}

func TestEvalAttributeOnDefinedName(t *testing.T) {
	_, err := Eval("name.upper", vars(map[string]any{"name": "x"}))
	assert.ErrorIs(t, err, ErrType)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "abc", Format("abc"))
	assert.Equal(t, "4", Format(int64(4)))
	assert.Equal(t, "4", Format(4))
	assert.Equal(t, "3.5", Format(3.5))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "[a 1]", Format([]any{"a", int64(1)}))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Strings([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "2"}, Strings([]any{"a", int64(2)}))
	assert.Equal(t, []string{"7"}, Strings(int64(7)))
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(int64(0)))
	assert.False(t, Truthy([]any{}))
	assert.True(t, Truthy("0"))
	assert.True(t, Truthy(1.5))
}
