package quasi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordsRaw(ws []Word) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Raw()
	}
	return out
}

// TestSplitWords verifies splitting happens only on unescaped literal whitespace.
func TestSplitWords(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		syntax Syntax
		want   []string
	}{
		{
			name:   "collapses whitespace runs",
			text:   "  a  b ",
			syntax: SyntaxRaw,
			want:   []string{"a", "b"},
		},
		{
			name:   "escaped space joins",
			text:   `a\ b c`,
			syntax: SyntaxRaw,
			want:   []string{`a\ b`, "c"},
		},
		{
			name:   "mixed whitespace separators",
			text:   "a\tb\nc\r\nd",
			syntax: SyntaxRaw,
			want:   []string{"a", "b", "c", "d"},
		},
		{
			name:   "unicode whitespace separates",
			text:   "a\u00a0b\u3000c",
			syntax: SyntaxRaw,
			want:   []string{"a", "b", "c"},
		},
		{
			name:   "interpolation attaches to neighbours",
			text:   "x#{a}y #{b}",
			syntax: SyntaxFull,
			want:   []string{"x#{a}y", "#{b}"},
		},
		{
			name:   "interpolation with spaces inside stays whole",
			text:   `foo bar #{ reverse("zab") }`,
			syntax: SyntaxFull,
			want:   []string{"foo", "bar", `#{ reverse("zab") }`},
		},
		{
			name:   "escaped tab does not split",
			text:   `a\tb`,
			syntax: SyntaxFull,
			want:   []string{`a\tb`},
		},
		{
			name:   "only whitespace",
			text:   " \t\n ",
			syntax: SyntaxRaw,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Scan(tt.text, tt.syntax)
			require.NoError(t, err)
			assert.Equal(t, tt.want, wordsRaw(SplitWords(s)))
		})
	}
}

// TestSplitWords_Spans verifies split literals keep their template offsets.
func TestSplitWords_Spans(t *testing.T) {
	text := `  a\ b  c `
	s, err := Scan(text, SyntaxRaw)
	require.NoError(t, err)

	words := SplitWords(s)
	require.Len(t, words, 2)

	require.Len(t, words[0], 3)
	assert.Equal(t, Span{2, 3}, words[0][0].Pos())
	assert.Equal(t, Span{3, 5}, words[0][1].Pos())
	assert.Equal(t, Span{5, 6}, words[0][2].Pos())

	require.Len(t, words[1], 1)
	assert.Equal(t, Literal{Text: "c", Span: Span{8, 9}}, words[1][0])
	for _, w := range words {
		for _, tok := range w {
			assert.Equal(t, text[tok.Pos().Start:tok.Pos().End], tok.Raw())
		}
	}
}
