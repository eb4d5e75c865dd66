package expr

import (
	"context"

	"github.com/randalmurphal/quasi/pkg/quasi"
	"github.com/randalmurphal/quasi/pkg/quasi/registry"
)

// MissingAction specifies how undefined identifiers are handled.
type MissingAction int

const (
	// MissingError fails the evaluation with an UndefinedVariableError.
	MissingError MissingAction = iota

	// MissingEmpty evaluates an undefined identifier to the empty string.
	MissingEmpty

	// MissingKeep evaluates an undefined identifier to its own name.
	MissingKeep
)

// ParseMissingAction parses "error", "empty" or "keep".
func ParseMissingAction(s string) (MissingAction, bool) {
	switch s {
	case "error", "":
		return MissingError, true
	case "empty":
		return MissingEmpty, true
	case "keep":
		return MissingKeep, true
	default:
		return MissingError, false
	}
}

// Evaluator evaluates interpolation expressions against a set of variables.
// It implements quasi.Evaluator.
//
// An Evaluator is read-only after construction and safe for concurrent use.
type Evaluator struct {
	vars      map[string]any
	funcs     *registry.Registry[string, Func]
	customOps map[string]BinaryOp
	missing   MissingAction
}

// Compile-time interface check.
var _ quasi.Evaluator = (*Evaluator)(nil)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithVars sets the variables identifiers resolve against.
func WithVars(vars map[string]any) Option {
	return func(e *Evaluator) {
		e.vars = vars
	}
}

// WithFuncs replaces the function table with a copy of funcs.
//
// Default: Builtins()
func WithFuncs(funcs *registry.Registry[string, Func]) Option {
	return func(e *Evaluator) {
		if funcs != nil {
			e.funcs = funcs.Clone()
		}
	}
}

// WithFunc adds or replaces a single function.
//
// Example:
//
//	e := expr.New(expr.WithFunc("shout", func(args ...any) (any, error) {
//	    return strings.ToUpper(expr.Stringify(args[0])) + "!", nil
//	}))
func WithFunc(name string, fn Func) Option {
	return func(e *Evaluator) {
		e.funcs.Register(name, fn)
	}
}

// WithCustomOperator registers a custom binary operator.
// The name must be an identifier and should not shadow a built-in operator.
func WithCustomOperator(name string, fn BinaryOp) Option {
	return func(e *Evaluator) {
		if e.customOps == nil {
			e.customOps = make(map[string]BinaryOp)
		}
		e.customOps[name] = fn
	}
}

// WithMissingAction sets how undefined identifiers are handled.
//
// Default: MissingError
func WithMissingAction(action MissingAction) Option {
	return func(e *Evaluator) {
		e.missing = action
	}
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		funcs:   Builtins(),
		missing: MissingError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval evaluates an expression and returns its value.
func (e *Evaluator) Eval(expr string) (any, error) {
	n, err := parse(expr, e.customOps)
	if err != nil {
		return nil, err
	}
	return n.eval(e)
}

// Evaluate evaluates an expression and returns its string form.
func (e *Evaluator) Evaluate(ctx context.Context, expr string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := e.Eval(expr)
	if err != nil {
		return "", err
	}
	return Stringify(v), nil
}

// Test evaluates an expression for truthiness.
func (e *Evaluator) Test(expr string) (bool, error) {
	v, err := e.Eval(expr)
	if err != nil {
		return false, err
	}
	return IsTruthy(v), nil
}

// Funcs returns the names of the callable functions in sorted order.
func (e *Evaluator) Funcs() []string {
	return e.funcs.Keys()
}

// Eval is a convenience function that evaluates an expression with the
// builtin functions and MissingError.
func Eval(expr string, vars map[string]any) (any, error) {
	return New(WithVars(vars)).Eval(expr)
}
