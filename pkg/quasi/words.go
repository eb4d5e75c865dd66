package quasi

import (
	"unicode"
	"unicode/utf8"
)

// Word is the tokens of one whitespace-delimited unit, in template order.
type Word []Token

// Raw returns the template text the word was built from.
func (w Word) Raw() string {
	return Stream(w).String()
}

// SplitWords partitions a stream into words at runs of unescaped
// whitespace. Only whitespace inside Literal tokens separates words;
// escapes and interpolations always belong to the word they touch.
// Leading and trailing whitespace produce no words.
func SplitWords(s Stream) []Word {
	var words []Word
	var cur Word
	for _, tok := range s {
		lit, ok := tok.(Literal)
		if !ok {
			cur = append(cur, tok)
			continue
		}

		text := lit.Text
		seg := -1
		for i := 0; i < len(text); {
			r, size := utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				if seg >= 0 {
					cur = append(cur, subLiteral(lit, seg, i))
					seg = -1
				}
				if len(cur) > 0 {
					words = append(words, cur)
					cur = nil
				}
			} else if seg < 0 {
				seg = i
			}
			i += size
		}
		if seg >= 0 {
			cur = append(cur, subLiteral(lit, seg, len(text)))
		}
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

// subLiteral returns the part of lit between byte offsets i and j of its text.
func subLiteral(lit Literal, i, j int) Literal {
	return Literal{
		Text: lit.Text[i:j],
		Span: Span{Start: lit.Span.Start + i, End: lit.Span.Start + j},
	}
}
