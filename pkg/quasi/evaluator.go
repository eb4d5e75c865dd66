package quasi

import (
	"context"
	"fmt"
	"strings"
)

// Evaluator turns the text of a #{...} interpolation into the string that
// replaces it. The renderer calls it once per interpolation, in template
// order, with the expression text exactly as written between the braces.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string) (string, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, expr string) (string, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, expr string) (string, error) {
	return f(ctx, expr)
}

// MapEvaluator looks up the whitespace-trimmed expression in a map.
// Unknown names are an error.
type MapEvaluator map[string]string

// Evaluate implements Evaluator.
func (m MapEvaluator) Evaluate(_ context.Context, expr string) (string, error) {
	name := strings.TrimSpace(expr)
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("undefined variable: %s", name)
}
