/*
Package quasi renders quasi-quoted string templates.

# Overview

A template is a piece of source text that turns into either a single string
or a list of words. Four transforms cover the combinations:

	q   Raw                text returned exactly as written
	qq  Interpolated       escapes decoded, #{...} replaced by evaluated values
	w   RawWords           split on whitespace, only \\ and "\ " are escapes
	ww  InterpolatedWords  qq followed by splitting on unescaped whitespace

# Basic Usage

	eval := quasi.MapEvaluator{"name": "Brian"}

	s, err := quasi.Interpolated(ctx, "Hello, #{name}!\n", eval)
	// s: "Hello, Brian!\n"

	words := quasi.RawWords(`  hello\ world  again `)
	// words: ["hello world", "again"]

# Escapes

Interpolated modes accept Go's string escapes (\n, \t, \x41, \u00e9, \101
and so on) plus:
  - ASCII control mnemonics: \NUL, \SOH, ..., \ESC, \DEL, \SP
  - control letters: \^@ through \^_
  - \& which decodes to nothing
  - \# which decodes to # and so suppresses interpolation: \#{x} is "#{x}"
  - a backslash before any whitespace character, which keeps it literal

# Interpolation

The text between #{ and its matching } is handed to an Evaluator verbatim.
Braces nest, so #{ f({1,2}) } passes " f({1,2}) ". Evaluation happens left
to right after the whole template has been scanned, so a malformed template
never reaches the evaluator.

In word mode the evaluated value always belongs to the word it appears in:

	ws, _ := quasi.InterpolatedWords(ctx, "foo #{x}\\tbar", quasi.MapEvaluator{"x": "y z"})
	// ws: ["foo", "y z\tbar"]

The expr subpackage provides an Evaluator with variables, comparisons and
a registry of string functions.

# Errors

Every failing render returns an *Error carrying the byte offset, line,
column and offending snippet. Use errors.Is with the sentinel errors:

	_, err := quasi.Interpolated(ctx, `bad \q`, eval)
	if errors.Is(err, quasi.ErrInvalidEscapeSequence) {
	    var qe *quasi.Error
	    errors.As(err, &qe)
	    fmt.Println(qe.Line, qe.Column, qe.Snippet)
	}

# Observability

A Renderer can log through slog and report OpenTelemetry metrics and spans:

	r := quasi.NewRenderer(
	    quasi.WithEvaluator(eval),
	    quasi.WithLogger(slog.Default()),
	    quasi.WithMetrics(true),
	    quasi.WithTracing(true),
	)
*/
package quasi
