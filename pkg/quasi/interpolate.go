package quasi

import "strings"

const (
	interpolationOpen  = "#{"
	interpolationClose = "}"
)

// extractInterpolation reads the #{...} span starting at text[start]. It
// returns the inner expression and the offset just past the closing brace.
//
// Braces inside the expression nest, so "#{ f({1,2}) }" yields " f({1,2}) "
// rather than stopping at the first }.
func extractInterpolation(text string, start int) (string, int, error) {
	body := start + len(interpolationOpen)
	depth := 1
	for i := body; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[body:i], i + 1, nil
			}
		}
	}
	return "", 0, newError(KindUnterminatedInterpolation, text, start,
		truncate(text[start:], maxSnippet), nil)
}

// HasInterpolation reports whether text contains an unescaped #{.
func HasInterpolation(text string) bool {
	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '\\':
			i++
		case strings.HasPrefix(text[i:], interpolationOpen):
			return true
		}
	}
	return false
}
