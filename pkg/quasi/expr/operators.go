package expr

import (
	"fmt"
	"strings"
)

// BinaryOp is a function that compares two values and returns a boolean result.
type BinaryOp func(left, right any) bool

// Compare compares two values using the specified operator. Equality
// compares string forms; ordering compares numerically.
// Returns an error for unknown operators.
func Compare(left, right any, op string) (bool, error) {
	switch op {
	case "==":
		return Stringify(left) == Stringify(right), nil
	case "!=":
		return Stringify(left) != Stringify(right), nil
	case "<":
		return ToFloat64(left) < ToFloat64(right), nil
	case ">":
		return ToFloat64(left) > ToFloat64(right), nil
	case "<=":
		return ToFloat64(left) <= ToFloat64(right), nil
	case ">=":
		return ToFloat64(left) >= ToFloat64(right), nil
	case "contains":
		return contains(left, right), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", op)
	}
}

// contains reports list membership for lists and substring containment
// for everything else.
func contains(left, right any) bool {
	want := Stringify(right)
	switch l := left.(type) {
	case []string:
		for _, s := range l {
			if s == want {
				return true
			}
		}
		return false
	case []any:
		for _, v := range l {
			if Stringify(v) == want {
				return true
			}
		}
		return false
	default:
		return strings.Contains(Stringify(left), want)
	}
}
