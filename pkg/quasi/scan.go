package quasi

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Syntax selects how much of the template grammar the scanner recognizes.
type Syntax int

const (
	// SyntaxRaw recognizes only \\ and backslash-whitespace. Every other
	// backslash and every #{ is literal text.
	SyntaxRaw Syntax = iota

	// SyntaxFull recognizes the whole escape grammar and #{...}
	// interpolations.
	SyntaxFull
)

// String returns the syntax name.
func (s Syntax) String() string {
	switch s {
	case SyntaxRaw:
		return "raw"
	case SyntaxFull:
		return "full"
	default:
		return "unknown"
	}
}

// Scan splits text into tokens. Concatenating the Raw form of every token
// reproduces text exactly.
//
// With SyntaxFull, Scan fails with ErrMalformedEscape on a trailing
// backslash, ErrInvalidEscapeSequence on an unknown escape and
// ErrUnterminatedInterpolation on an unbalanced #{. SyntaxRaw never fails.
func Scan(text string, syntax Syntax) (Stream, error) {
	return newScanner(text, syntax, true).scan()
}

// scanner holds the state of one left-to-right pass over a template.
type scanner struct {
	text       string
	syntax     Syntax
	hashEscape bool

	out      Stream
	litStart int
}

func newScanner(text string, syntax Syntax, hashEscape bool) *scanner {
	return &scanner{text: text, syntax: syntax, hashEscape: hashEscape}
}

func (s *scanner) scan() (Stream, error) {
	text := s.text
	for i := 0; i < len(text); {
		switch {
		case text[i] == '\\':
			n, err := s.escape(i)
			if err != nil {
				return nil, err
			}
			i += n

		case s.syntax == SyntaxFull && strings.HasPrefix(text[i:], interpolationOpen):
			expr, end, err := extractInterpolation(text, i)
			if err != nil {
				return nil, err
			}
			s.flush(i)
			s.out = append(s.out, Interpolation{Expr: expr, Span: Span{Start: i, End: end}})
			s.litStart = end
			i = end

		default:
			i++
		}
	}
	s.flush(len(text))
	return s.out, nil
}

// escape handles the backslash at text[i] and returns how many bytes it
// consumed. Backslashes that are not escapes in the current syntax stay in
// the pending literal.
func (s *scanner) escape(i int) (int, error) {
	text := s.text
	if i+1 == len(text) {
		if s.syntax == SyntaxRaw {
			return 1, nil
		}
		return 0, newError(KindMalformedEscape, text, i, `\`, nil)
	}

	r, size := utf8.DecodeRuneInString(text[i+1:])
	if s.syntax == SyntaxRaw {
		if r != '\\' && !unicode.IsSpace(r) {
			return 1, nil
		}
		s.emitEscape(i, 1+size, string(r))
		return 1 + size, nil
	}

	if r == '#' && !s.hashEscape {
		return 0, newError(KindInvalidEscapeSequence, text, i, `\#`, nil)
	}
	n, value, err := scanEscape(text[i:])
	if err != nil {
		var qe *Error
		if errors.As(err, &qe) {
			return 0, newError(qe.Kind, text, i+qe.Offset, qe.Snippet, nil)
		}
		return 0, err
	}
	s.emitEscape(i, n, value)
	return n, nil
}

func (s *scanner) emitEscape(start, n int, value string) {
	s.flush(start)
	end := start + n
	s.out = append(s.out, Escape{
		RawForm: s.text[start:end],
		Value:   value,
		Span:    Span{Start: start, End: end},
	})
	s.litStart = end
}

// flush emits the pending literal text ending at end, if any.
func (s *scanner) flush(end int) {
	if end > s.litStart {
		s.out = append(s.out, Literal{
			Text: s.text[s.litStart:end],
			Span: Span{Start: s.litStart, End: end},
		})
	}
	s.litStart = end
}
