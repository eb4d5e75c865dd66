// Package registry provides a thread-safe named table of values.
//
// The expression evaluator keeps its callable functions in a
// Registry[string, expr.Func]; applications register their own functions
// alongside the builtins:
//
//	funcs := registry.New[string, expr.Func]()
//	funcs.Register("shout", func(args ...any) (any, error) {
//	    return strings.ToUpper(fmt.Sprint(args...)) + "!", nil
//	})
//
// Keys returns names in sorted order so listings (such as `quasi funcs`)
// are stable.
//
// All methods are safe for concurrent use. Range and Keys work on a
// snapshot, so the registry may be modified during iteration.
package registry
