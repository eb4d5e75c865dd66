package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokComma
)

// token is one lexical unit of an expression. pos is a byte offset.
type token struct {
	kind tokenKind
	text string
	val  any
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return strconv.Quote(t.text)
}

// lex splits src into tokens, ending with a tokEOF.
func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size

		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++

		case r == '"' || r == '\'':
			end, val, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: src[i:end], val: val, pos: i})
			i = end

		case r >= '0' && r <= '9':
			end, val, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:end], val: val, pos: i})
			i = end

		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})

		default:
			op := lexOp(src[i:])
			if op == "" {
				return nil, syntaxError(i, "unexpected character %q", r)
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// lexOp returns the operator at the start of s, or "".
func lexOp(s string) string {
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">", "!", "-"} {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// lexString reads a quoted string starting at src[start]. Double-quoted
// strings use Go escapes; single-quoted strings only understand \' and \\.
func lexString(src string, start int) (int, string, error) {
	quote := src[start]
	i := start + 1
	for i < len(src) && src[i] != quote {
		if src[i] == '\\' {
			i++
		}
		i++
	}
	if i >= len(src) {
		return 0, "", syntaxError(start, "unterminated string")
	}
	end := i + 1
	body := src[start:end]

	if quote == '"' {
		s, err := strconv.Unquote(body)
		if err != nil {
			return 0, "", syntaxError(start, "invalid string %s", body)
		}
		return end, s, nil
	}
	r := strings.NewReplacer(`\'`, `'`, `\\`, `\`)
	return end, r.Replace(body[1 : len(body)-1]), nil
}

// lexNumber reads an integer or decimal literal.
func lexNumber(src string, start int) (int, any, error) {
	i := start
	dot := false
	for i < len(src) {
		c := src[i]
		if c == '.' && !dot && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9' {
			dot = true
		} else if c < '0' || c > '9' {
			break
		}
		i++
	}
	text := src[start:i]
	if !dot {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, nil, syntaxError(start, "invalid number %s", text)
	}
	return i, f, nil
}

func syntaxError(pos int, format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, pos, fmt.Sprintf(format, args...))
}
