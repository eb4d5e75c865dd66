package quasi

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel errors, one per error kind. Use errors.Is to test a render error.
var (
	// ErrUnterminatedInterpolation indicates a #{ with no matching }.
	ErrUnterminatedInterpolation = errors.New("unterminated interpolation")

	// ErrInvalidEscapeSequence indicates a backslash form the escape grammar rejects.
	ErrInvalidEscapeSequence = errors.New("invalid escape sequence")

	// ErrMalformedEscape indicates a lone backslash at the end of the template.
	ErrMalformedEscape = errors.New("malformed escape")

	// ErrInterpolationEvaluation indicates the evaluator failed.
	ErrInterpolationEvaluation = errors.New("interpolation evaluation failed")

	// ErrNoEvaluator indicates an interpolation was found but no evaluator was configured.
	ErrNoEvaluator = errors.New("no evaluator configured")
)

// Kind classifies a render failure.
type Kind int

const (
	// KindUnterminatedInterpolation is an unbalanced #{.
	KindUnterminatedInterpolation Kind = iota + 1

	// KindInvalidEscapeSequence is an unrecognized backslash form.
	KindInvalidEscapeSequence

	// KindMalformedEscape is a trailing backslash.
	KindMalformedEscape

	// KindInterpolationEvaluation wraps an evaluator failure.
	KindInterpolationEvaluation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUnterminatedInterpolation:
		return "UnterminatedInterpolation"
	case KindInvalidEscapeSequence:
		return "InvalidEscapeSequence"
	case KindMalformedEscape:
		return "MalformedEscape"
	case KindInterpolationEvaluation:
		return "InterpolationEvaluationError"
	default:
		return "unknown"
	}
}

// sentinel returns the sentinel error matching the kind.
func (k Kind) sentinel() error {
	switch k {
	case KindUnterminatedInterpolation:
		return ErrUnterminatedInterpolation
	case KindInvalidEscapeSequence:
		return ErrInvalidEscapeSequence
	case KindMalformedEscape:
		return ErrMalformedEscape
	case KindInterpolationEvaluation:
		return ErrInterpolationEvaluation
	default:
		return nil
	}
}

// Error is returned by every failing render. It locates the defect in the
// template so authors can find it.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Offset is the byte offset of the defect in the template.
	Offset int

	// Line and Column are 1-based. Column counts runes.
	Line   int
	Column int

	// Snippet is the offending template text.
	Snippet string

	// Expr is the interpolation expression, for evaluation failures.
	Expr string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at line %d, column %d (offset %d)", e.Kind, e.Line, e.Column, e.Offset)
	if e.Snippet != "" {
		fmt.Fprintf(&sb, ": %q", e.Snippet)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// maxSnippet caps the snippet length for unterminated interpolations.
const maxSnippet = 32

// newError builds an Error, computing line and column from the template.
func newError(kind Kind, text string, offset int, snippet string, err error) *Error {
	line, col := position(text, offset)
	return &Error{
		Kind:    kind,
		Offset:  offset,
		Line:    line,
		Column:  col,
		Snippet: snippet,
		Err:     err,
	}
}

// position converts a byte offset into a 1-based line and rune column.
func position(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return line, utf8.RuneCountInString(before) + 1
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
