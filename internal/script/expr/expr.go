package expr

import (
	"errors"
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	ErrSyntax         = errors.New("invalid expression")
	ErrUnsupported    = errors.New("unsupported expression")
	ErrDivisionByZero = errors.New("division by zero")
	ErrType           = errors.New("type mismatch")
	ErrIndex          = errors.New("index out of range")
)

// UndefinedError reports a name with no binding.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("name %q is not defined", e.Name)
}

// Lookup resolves a variable name.
type Lookup func(name string) (any, bool)

// Names of the functions operators and variable reads are rewritten into.
const (
	fnVar    = "$var"
	fnBinary = "$binary"
	fnIndex  = "$index"
	fnSlice  = "$slice"
	fnTruthy = "$truthy"
	fnNot    = "$not"
)

// Eval evaluates src against the bindings visible through lookup. The result
// is one of int64, float64, string, bool, []any or nil.
func Eval(src string, lookup Lookup) (any, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	if _, err := parser.Parse(src); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	if lookup == nil {
		lookup = func(string) (any, bool) { return nil, false }
	}

	e := &evaluator{lookup: lookup}
	program, err := exprlang.Compile(src, e.options()...)
	if e.err != nil {
		return nil, e.err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	out, err := exprlang.Run(program, map[string]any{})
	if e.err != nil {
		return nil, e.err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrType, err)
	}
	return normalize(out), nil
}

// evaluator holds the state of one evaluation. The first error raised by a
// rewritten operator or builtin is kept so it survives the VM's wrapping.
type evaluator struct {
	lookup Lookup
	err    error
}

func (e *evaluator) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return err
}

func (e *evaluator) options() []exprlang.Option {
	opts := []exprlang.Option{
		exprlang.DisableAllBuiltins(),
		exprlang.Patch(&rewriter{e: e}),
		e.function(fnVar, func(args []any) (any, error) {
			name := args[0].(string)
			v, ok := e.lookup(name)
			if !ok {
				return nil, &UndefinedError{Name: name}
			}
			return normalize(v), nil
		}),
		e.function(fnBinary, func(args []any) (any, error) {
			return binary(args[0].(string), args[1], args[2])
		}),
		e.function(fnIndex, func(args []any) (any, error) { return index(args[0], args[1]) }),
		e.function(fnSlice, func(args []any) (any, error) { return slice(args[0], args[1], args[2]) }),
		e.function(fnTruthy, func(args []any) (any, error) { return Truthy(args[0]), nil }),
		e.function(fnNot, func(args []any) (any, error) { return !Truthy(args[0]), nil }),
	}
	for name, b := range builtins {
		opts = append(opts, e.function(name, b.call(name)))
	}
	return opts
}

func (e *evaluator) function(name string, fn func(args []any) (any, error)) exprlang.Option {
	return exprlang.Function(name, func(params ...any) (any, error) {
		args := make([]any, len(params))
		for i, p := range params {
			args[i] = normalize(p)
		}
		v, err := fn(args)
		if err != nil {
			return nil, e.fail(err)
		}
		return v, nil
	})
}

// rewriter routes variable reads, operators, indexing and boolean logic
// through the evaluator's functions so they follow the script language's
// rules instead of the VM's. Walk is post-order, so children are already
// rewritten when a node is visited.
type rewriter struct {
	e *evaluator
}

func (r *rewriter) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		switch n.Value {
		case "True":
			ast.Patch(node, &ast.BoolNode{Value: true})
		case "False":
			ast.Patch(node, &ast.BoolNode{Value: false})
		case "None":
			ast.Patch(node, &ast.NilNode{})
		default:
			if _, ok := builtins[n.Value]; !ok {
				ast.Patch(node, call(fnVar, &ast.StringNode{Value: n.Value}))
			}
		}
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			if _, ok := builtins[id.Value]; !ok {
				r.e.fail(&UndefinedError{Name: id.Value})
			}
			return
		}
		if name, ok := varName(n.Callee); ok {
			r.e.fail(&UndefinedError{Name: name})
			return
		}
		r.e.fail(fmt.Errorf("%w: call of non-builtin", ErrUnsupported))
	case *ast.BinaryNode:
		switch n.Operator {
		case "&&", "and":
			ast.Patch(node, &ast.ConditionalNode{
				Cond: call(fnTruthy, n.Left),
				Exp1: call(fnTruthy, n.Right),
				Exp2: &ast.BoolNode{Value: false},
			})
		case "||", "or":
			ast.Patch(node, &ast.ConditionalNode{
				Cond: call(fnTruthy, n.Left),
				Exp1: &ast.BoolNode{Value: true},
				Exp2: call(fnTruthy, n.Right),
			})
		case "+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=":
			ast.Patch(node, call(fnBinary, &ast.StringNode{Value: n.Operator}, n.Left, n.Right))
		}
	case *ast.UnaryNode:
		if n.Operator == "!" || n.Operator == "not" {
			ast.Patch(node, call(fnNot, n.Node))
		}
	case *ast.ConditionalNode:
		n.Cond = call(fnTruthy, n.Cond)
	case *ast.MemberNode:
		ast.Patch(node, call(fnIndex, n.Node, n.Property))
	case *ast.SliceNode:
		ast.Patch(node, call(fnSlice, n.Node, orNil(n.From), orNil(n.To)))
	case *ast.BuiltinNode, *ast.PredicateNode, *ast.PointerNode:
		r.e.fail(fmt.Errorf("%w: %T", ErrUnsupported, n))
	}
}

func call(name string, args ...ast.Node) ast.Node {
	return &ast.CallNode{Callee: &ast.IdentifierNode{Value: name}, Arguments: args}
}

func orNil(n ast.Node) ast.Node {
	if n == nil {
		return &ast.NilNode{}
	}
	return n
}

// varName reports the variable a rewritten read refers to.
func varName(n ast.Node) (string, bool) {
	c, ok := n.(*ast.CallNode)
	if !ok || len(c.Arguments) != 1 {
		return "", false
	}
	if id, ok := c.Callee.(*ast.IdentifierNode); !ok || id.Value != fnVar {
		return "", false
	}
	s, ok := c.Arguments[0].(*ast.StringNode)
	if !ok {
		return "", false
	}
	return s.Value, true
}
