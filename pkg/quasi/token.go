package quasi

import "strings"

// Span is the half-open byte range [Start, End) a token occupies in its
// template.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Token is one piece of a scanned template.
// It is implemented by Literal, Escape and Interpolation only.
type Token interface {
	// Raw returns the exact template text the token was scanned from.
	Raw() string

	// Pos returns where in the template the token was found.
	Pos() Span

	token()
}

// Literal is text copied through unchanged.
type Literal struct {
	Text string
	Span Span
}

// Raw implements Token.
func (t Literal) Raw() string { return t.Text }

// Pos implements Token.
func (t Literal) Pos() Span { return t.Span }

func (Literal) token() {}

// Escape is a backslash sequence such as \n, \\ or "\ ".
// Value is the decoded text, filled in by the scanner.
type Escape struct {
	RawForm string
	Value   string
	Span    Span
}

// Raw implements Token.
func (t Escape) Raw() string { return t.RawForm }

// Pos implements Token.
func (t Escape) Pos() Span { return t.Span }

func (Escape) token() {}

// Interpolation is a #{...} span. Expr holds the text between the
// delimiters, verbatim.
type Interpolation struct {
	Expr string
	Span Span
}

// Raw implements Token.
func (t Interpolation) Raw() string { return interpolationOpen + t.Expr + interpolationClose }

// Pos implements Token.
func (t Interpolation) Pos() Span { return t.Span }

func (Interpolation) token() {}

// Stream is the ordered token decomposition of a template.
type Stream []Token

// String reassembles the template the stream was scanned from.
func (s Stream) String() string {
	var sb strings.Builder
	for _, tok := range s {
		sb.WriteString(tok.Raw())
	}
	return sb.String()
}

// Interpolations returns the interpolation tokens in order.
func (s Stream) Interpolations() []Interpolation {
	var out []Interpolation
	for _, tok := range s {
		if in, ok := tok.(Interpolation); ok {
			out = append(out, in)
		}
	}
	return out
}
