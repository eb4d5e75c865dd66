package quasi

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// mnemonics maps ASCII control mnemonics to their characters.
var mnemonics = map[string]string{
	"NUL": "\x00", "SOH": "\x01", "STX": "\x02", "ETX": "\x03",
	"EOT": "\x04", "ENQ": "\x05", "ACK": "\x06", "BEL": "\x07",
	"BS": "\x08", "HT": "\x09", "LF": "\x0a", "VT": "\x0b",
	"FF": "\x0c", "CR": "\x0d", "SO": "\x0e", "SI": "\x0f",
	"DLE": "\x10", "DC1": "\x11", "DC2": "\x12", "DC3": "\x13",
	"DC4": "\x14", "NAK": "\x15", "SYN": "\x16", "ETB": "\x17",
	"CAN": "\x18", "EM": "\x19", "SUB": "\x1a", "ESC": "\x1b",
	"FS": "\x1c", "GS": "\x1d", "RS": "\x1e", "US": "\x1f",
	"SP": " ", "DEL": "\x7f",
}

// DecodeEscape decodes a single escape sequence. raw must start with a
// backslash and contain exactly one escape.
//
// The grammar is Go's string literal escapes plus ASCII control mnemonics
// (\ESC, \NUL, ...), control letters (\^A), the empty escape \&, \# and
// backslash-whitespace.
func DecodeEscape(raw string) (string, error) {
	n, value, err := scanEscape(raw)
	if err != nil {
		return "", err
	}
	if n != len(raw) {
		return "", newError(KindInvalidEscapeSequence, raw, 0, raw, nil)
	}
	return value, nil
}

// scanEscape reads one escape from the start of s, which begins with a
// backslash. It returns the raw length consumed and the decoded value.
func scanEscape(s string) (int, string, error) {
	if len(s) < 2 || s[0] != '\\' {
		return 0, "", newError(KindMalformedEscape, s, 0, s, nil)
	}
	r, size := utf8.DecodeRuneInString(s[1:])
	if r >= 'A' && r <= 'Z' {
		// Longest match first so \SOH is not read as \SO followed by H.
		for _, l := range []int{3, 2} {
			if len(s) >= 1+l {
				if v, ok := mnemonics[s[1:1+l]]; ok {
					return 1 + l, v, nil
				}
			}
		}
	}
	switch {
	case unicode.IsSpace(r):
		return 1 + size, string(r), nil
	case r == '\\', r == '#', r == '\'', r == '"':
		return 2, string(r), nil
	case r == '&':
		return 2, "", nil
	case r == '^':
		if len(s) > 2 && s[2] >= '@' && s[2] <= '_' {
			return 3, string(rune(s[2] - '@')), nil
		}
		return 0, "", invalidEscape(s, 3)
	}

	value, multibyte, tail, err := strconv.UnquoteChar(s, 0)
	if err != nil {
		return 0, "", invalidEscape(s, expectedEscapeLen(r, size))
	}
	n := len(s) - len(tail)
	if value < utf8.RuneSelf || !multibyte {
		return n, string([]byte{byte(value)}), nil
	}
	return n, string(value), nil
}

// expectedEscapeLen is the raw length an escape introduced by r would have.
func expectedEscapeLen(r rune, size int) int {
	switch {
	case r == 'x':
		return 4
	case r == 'u':
		return 6
	case r == 'U':
		return 10
	case r >= '0' && r <= '7':
		return 4
	default:
		return 1 + size
	}
}

// invalidEscape reports the first n bytes of s as the offending escape.
func invalidEscape(s string, n int) error {
	if n > len(s) {
		n = len(s)
	}
	for n < len(s) && !utf8.RuneStart(s[n]) {
		n++
	}
	return newError(KindInvalidEscapeSequence, s, 0, s[:n], nil)
}

// Decode returns the text a stream denotes with escapes decoded.
// Interpolations are kept in their raw #{...} form.
func Decode(s Stream) string {
	var sb strings.Builder
	for _, tok := range s {
		switch t := tok.(type) {
		case Escape:
			sb.WriteString(t.Value)
		default:
			sb.WriteString(tok.Raw())
		}
	}
	return sb.String()
}

// Unescape decodes every escape in text. Interpolations are kept verbatim.
func Unescape(text string) (string, error) {
	s, err := Scan(text, SyntaxFull)
	if err != nil {
		return "", err
	}
	return Decode(s), nil
}

// Encode returns template text that renders to s in interpolated string
// mode: backslashes, quotes and non-printable characters are escaped and
// every #{ is written as \#{.
func Encode(s string) string {
	q := strconv.Quote(s)
	q = q[1 : len(q)-1]
	return strings.ReplaceAll(q, interpolationOpen, `\`+interpolationOpen)
}

// EncodeWord is Encode with spaces escaped as well, so the result renders
// to the single word s in interpolated word mode. An empty s has no word
// representation and encodes to "".
func EncodeWord(s string) string {
	return strings.ReplaceAll(Encode(s), " ", `\ `)
}
