package namespace

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/GriffinCanCode/twill/internal/script/expr"
)

var substitution = regexp.MustCompile(`\$\{(.*?)\}`)

// Namespace holds global variables and a stack of local frames. Lookups
// consult the innermost frame before the globals.
type Namespace struct {
	mu      sync.RWMutex
	globals map[string]any
	locals  []map[string]any
}

// New creates an empty namespace with no local frames.
func New() *Namespace {
	return &Namespace{globals: make(map[string]any)}
}

// PushLocal opens a new local frame.
func (n *Namespace) PushLocal() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.locals = append(n.locals, make(map[string]any))
}

// PopLocal discards the innermost local frame.
func (n *Namespace) PopLocal() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.locals) > 0 {
		n.locals = n.locals[:len(n.locals)-1]
	}
}

// Depth returns the number of open local frames.
func (n *Namespace) Depth() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.locals)
}

func (n *Namespace) SetGlobal(name string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.globals[name] = value
}

// SetLocal binds name in the innermost frame, or globally when no frame is
// open.
func (n *Namespace) SetLocal(name string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.locals) == 0 {
		n.globals[name] = value
		return
	}
	n.locals[len(n.locals)-1][name] = value
}

func (n *Namespace) Lookup(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if len(n.locals) > 0 {
		if v, ok := n.locals[len(n.locals)-1][name]; ok {
			return v, true
		}
	}
	v, ok := n.globals[name]
	return v, ok
}

// Globals returns a copy of the global bindings.
func (n *Namespace) Globals() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]any, len(n.globals))
	for k, v := range n.globals {
		out[k] = v
	}
	return out
}

// Locals returns a copy of the innermost frame's bindings.
func (n *Namespace) Locals() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]any)
	if len(n.locals) > 0 {
		for k, v := range n.locals[len(n.locals)-1] {
			out[k] = v
		}
	}
	return out
}

// Eval evaluates an expression against the current bindings.
func (n *Namespace) Eval(src string) (any, error) {
	return expr.Eval(src, n.Lookup)
}

// ProcessArgs expands variable references in raw arguments.
//
// An argument starting with "__" is evaluated as a whole; a sequence result
// is spliced in as several arguments. An argument starting with "$" (but not
// "${") is evaluated without the dollar sign. Other arguments have each
// ${expr} span replaced by its value. Unresolvable names and, for the whole
// argument forms, malformed expressions leave the text as written; any other
// evaluation failure is returned. Finally the two characters \n become a
// newline.
func (n *Namespace) ProcessArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "__"):
			v, err := n.Eval(arg)
			if keepLiteral(err) {
				out = append(out, arg)
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, expr.Strings(v)...)
		case strings.HasPrefix(arg, "$") && !strings.HasPrefix(arg, "${"):
			v, err := n.Eval(arg[1:])
			if keepLiteral(err) {
				out = append(out, arg)
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, expr.Format(v))
		default:
			s, err := n.Substitute(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	for i, s := range out {
		out[i] = strings.ReplaceAll(s, `\n`, "\n")
	}
	return out, nil
}

// Substitute replaces each ${expr} span in s. Spans naming an undefined
// variable are left untouched.
func (n *Namespace) Substitute(s string) (string, error) {
	var firstErr error
	result := substitution.ReplaceAllStringFunc(s, func(span string) string {
		if firstErr != nil {
			return span
		}
		v, err := n.Eval(span[2 : len(span)-1])
		var undef *expr.UndefinedError
		if errors.As(err, &undef) {
			return span
		}
		if err != nil {
			firstErr = err
			return span
		}
		return expr.Format(v)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

func keepLiteral(err error) bool {
	var undef *expr.UndefinedError
	return errors.As(err, &undef) || errors.Is(err, expr.ErrSyntax)
}
