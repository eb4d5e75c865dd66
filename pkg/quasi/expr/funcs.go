package expr

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/randalmurphal/quasi/pkg/quasi/registry"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Func is a function callable from an expression.
type Func func(args ...any) (any, error)

// Builtins returns a new registry holding the builtin functions:
//
//	upper(s)              upper-case
//	lower(s)              lower-case
//	trim(s)               strip surrounding whitespace
//	title(s)              title-case each word
//	reverse(s)            reverse by rune
//	len(x)                rune count of a string, length of a list or map
//	join(list, sep)       join a list with sep
//	split(s, sep)         split s on sep
//	default(x, fallback)  x unless it is missing or falsy
//	concat(a, b, ...)     concatenate string forms
//	repeat(s, n)          s repeated n times
//	replace(s, old, new)  replace every old with new
//	quote(s)              Go-quoted string
func Builtins() *registry.Registry[string, Func] {
	r := registry.New[string, Func]()
	r.RegisterMany(map[string]Func{
		"upper":   stringFunc(strings.ToUpper),
		"lower":   stringFunc(strings.ToLower),
		"trim":    stringFunc(strings.TrimSpace),
		"title":   stringFunc(title),
		"reverse": stringFunc(reverse),
		"quote":   stringFunc(strconv.Quote),
		"len":     length,
		"join":    join,
		"split":   split,
		"default": defaultValue,
		"concat":  concat,
		"repeat":  repeat,
		"replace": replace,
	})
	return r
}

func checkArgs(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d, got %d", ErrArgs, n, len(args))
	}
	return nil
}

// stringFunc adapts a one-argument string function.
func stringFunc(fn func(string) string) Func {
	return func(args ...any) (any, error) {
		if err := checkArgs(args, 1); err != nil {
			return nil, err
		}
		return fn(Stringify(args[0])), nil
	}
}

// title builds a Caser per call; Casers are stateful.
func title(s string) string {
	return cases.Title(language.Und).String(s)
}

func reverse(s string) string {
	r := []rune(s)
	slices.Reverse(r)
	return string(r)
}

func length(args ...any) (any, error) {
	if err := checkArgs(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case nil:
		return int64(0), nil
	case []any:
		return int64(len(v)), nil
	case []string:
		return int64(len(v)), nil
	case map[string]any:
		return int64(len(v)), nil
	default:
		return int64(utf8.RuneCountInString(Stringify(v))), nil
	}
}

// toStrings converts a list value to its string elements.
func toStrings(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return l, nil
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			out[i] = Stringify(e)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrArgs, v)
	}
}

func join(args ...any) (any, error) {
	if err := checkArgs(args, 2); err != nil {
		return nil, err
	}
	parts, err := toStrings(args[0])
	if err != nil {
		return nil, err
	}
	return strings.Join(parts, Stringify(args[1])), nil
}

func split(args ...any) (any, error) {
	if err := checkArgs(args, 2); err != nil {
		return nil, err
	}
	return strings.Split(Stringify(args[0]), Stringify(args[1])), nil
}

func defaultValue(args ...any) (any, error) {
	if err := checkArgs(args, 2); err != nil {
		return nil, err
	}
	if IsTruthy(args[0]) {
		return args[0], nil
	}
	return args[1], nil
}

func concat(args ...any) (any, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(Stringify(a))
	}
	return sb.String(), nil
}

// maxRepeatLen caps the output of repeat, in bytes.
const maxRepeatLen = 1 << 20

func repeat(args ...any) (any, error) {
	if err := checkArgs(args, 2); err != nil {
		return nil, err
	}
	s := Stringify(args[0])
	count := ToFloat64(args[1])
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %v", ErrArgs, args[1])
	}
	// Checked as float so huge counts cannot overflow the int conversion.
	if count*float64(max(len(s), 1)) > maxRepeatLen {
		return nil, fmt.Errorf("%w: repeat output exceeds %d bytes", ErrArgs, maxRepeatLen)
	}
	return strings.Repeat(s, int(count)), nil
}

func replace(args ...any) (any, error) {
	if err := checkArgs(args, 3); err != nil {
		return nil, err
	}
	return strings.ReplaceAll(Stringify(args[0]), Stringify(args[1]), Stringify(args[2])), nil
}
