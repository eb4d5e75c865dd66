package quasi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/randalmurphal/quasi/pkg/quasi/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Mode selects one of the four transforms.
type Mode int

const (
	// ModeRaw returns the template unchanged.
	ModeRaw Mode = iota

	// ModeInterpolated decodes escapes and evaluates interpolations.
	ModeInterpolated

	// ModeRawWords splits on unescaped whitespace. Only \\ and
	// backslash-whitespace are escapes.
	ModeRawWords

	// ModeInterpolatedWords decodes escapes, evaluates interpolations and
	// splits on unescaped whitespace.
	ModeInterpolatedWords
)

// String returns the short mode name: q, qq, w or ww.
func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "q"
	case ModeInterpolated:
		return "qq"
	case ModeRawWords:
		return "w"
	case ModeInterpolatedWords:
		return "ww"
	default:
		return "unknown"
	}
}

// ParseMode parses a short (q, qq, w, ww) or long (raw, interpolated,
// raw-words, interpolated-words) mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "raw":
		return ModeRaw, nil
	case "qq", "interpolated":
		return ModeInterpolated, nil
	case "w", "raw-words":
		return ModeRawWords, nil
	case "ww", "interpolated-words":
		return ModeInterpolatedWords, nil
	default:
		return 0, fmt.Errorf("unknown mode: %q", s)
	}
}

// Syntax returns the scanner syntax the mode uses.
func (m Mode) Syntax() Syntax {
	if m == ModeInterpolated || m == ModeInterpolatedWords {
		return SyntaxFull
	}
	return SyntaxRaw
}

// Words reports whether the mode produces a word list.
func (m Mode) Words() bool {
	return m == ModeRawWords || m == ModeInterpolatedWords
}

// Result is the output of one render.
type Result struct {
	// Mode is the transform that produced the result.
	Mode Mode

	// Text is set for string modes.
	Text string

	// Words is set for word modes.
	Words []string

	// RenderID identifies the render in logs and traces.
	RenderID string
}

// Renderer runs the four transforms.
//
// Create with NewRenderer() and configure with Option functions.
// Renderer is safe for concurrent use after construction.
type Renderer struct {
	evaluator         Evaluator
	logger            *slog.Logger
	metrics           observability.MetricsRecorder
	spans             observability.SpanManager
	hashEscapeInWords bool
	newID             func() string
}

// NewRenderer creates a new Renderer with the given options.
//
// Default configuration:
//   - Evaluator: none
//   - Logger: none
//   - Metrics and tracing: disabled
//   - HashEscapeInWords: enabled
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		metrics:           observability.NoopMetrics{},
		spans:             observability.NoopSpanManager{},
		hashEscapeInWords: true,
		newID:             uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// withEvaluator returns a copy of r using e.
func (r *Renderer) withEvaluator(e Evaluator) *Renderer {
	c := *r
	c.evaluator = e
	return &c
}

// Raw returns text unchanged.
func (r *Renderer) Raw(text string) string {
	res, _ := r.Render(context.Background(), ModeRaw, text)
	return res.Text
}

// RawWords splits text into words. "\ " keeps a space inside a word and
// \\ is a single backslash; every other character is literal.
func (r *Renderer) RawWords(text string) []string {
	res, _ := r.Render(context.Background(), ModeRawWords, text)
	return res.Words
}

// Interpolated decodes escapes in text and replaces each #{...} with the
// evaluator's result.
func (r *Renderer) Interpolated(ctx context.Context, text string) (string, error) {
	res, err := r.Render(ctx, ModeInterpolated, text)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// InterpolatedWords is Interpolated followed by word splitting. Evaluated
// interpolations are never split, even if their result contains whitespace.
func (r *Renderer) InterpolatedWords(ctx context.Context, text string) ([]string, error) {
	res, err := r.Render(ctx, ModeInterpolatedWords, text)
	if err != nil {
		return nil, err
	}
	return res.Words, nil
}

// Render runs the transform selected by mode.
//
// The whole template is scanned and every escape decoded before the first
// evaluation, so malformed templates never reach the evaluator. Evaluation
// then proceeds left to right and stops at the first failure. On failure
// Render returns a zero Result and an *Error.
func (r *Renderer) Render(ctx context.Context, mode Mode, text string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	id := r.newID()
	logger := observability.EnrichLogger(r.logger, id, mode.String())
	ctx, span := r.spans.StartRenderSpan(ctx, mode.String(), id)
	start := time.Now()
	observability.LogRenderStart(logger, len(text))

	run := &render{Renderer: r, ctx: ctx, text: text, logger: logger}
	res, err := run.execute(mode)

	elapsed := time.Since(start)
	r.metrics.RecordRender(ctx, mode.String(), elapsed, err)
	r.spans.EndSpanWithError(span, err)
	durationMs := float64(elapsed.Microseconds()) / 1000
	if err != nil {
		observability.LogRenderError(logger, err, durationMs)
		return Result{}, err
	}

	res.RenderID = id
	outputs := 1
	if mode.Words() {
		outputs = len(res.Words)
		r.metrics.RecordWords(ctx, mode.String(), outputs)
	}
	observability.LogRenderComplete(logger, durationMs, outputs, run.evaluations)
	return res, nil
}

// render is the state of a single Render call.
type render struct {
	*Renderer
	ctx         context.Context
	text        string
	logger      *slog.Logger
	evaluations int
}

func (p *render) execute(mode Mode) (Result, error) {
	switch mode {
	case ModeRaw, ModeInterpolated, ModeRawWords, ModeInterpolatedWords:
	default:
		return Result{}, fmt.Errorf("unknown mode: %d", int(mode))
	}
	if mode == ModeRaw {
		return Result{Mode: mode, Text: p.text}, nil
	}

	hashEscape := mode != ModeInterpolatedWords || p.hashEscapeInWords
	stream, err := newScanner(p.text, mode.Syntax(), hashEscape).scan()
	if err != nil {
		return Result{}, err
	}
	p.spans.AddSpanEvent(p.ctx, "template scanned",
		attribute.Int("tokens", len(stream)),
		attribute.Int("interpolations", len(stream.Interpolations())),
	)

	if !mode.Words() {
		text, err := p.join(stream)
		if err != nil {
			return Result{}, err
		}
		return Result{Mode: mode, Text: text}, nil
	}

	words := SplitWords(stream)
	out := make([]string, 0, len(words))
	for _, w := range words {
		text, err := p.join(w)
		if err != nil {
			return Result{}, err
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return Result{Mode: mode, Words: out}, nil
}

// join concatenates the decoded value of each token.
func (p *render) join(tokens []Token) (string, error) {
	var sb strings.Builder
	for _, tok := range tokens {
		switch t := tok.(type) {
		case Literal:
			sb.WriteString(t.Text)
		case Escape:
			sb.WriteString(t.Value)
		case Interpolation:
			v, err := p.evaluate(t)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		}
	}
	return sb.String(), nil
}

// evaluate runs the evaluator on one interpolation.
func (p *render) evaluate(in Interpolation) (string, error) {
	offset := in.Span.Start
	if p.evaluator == nil {
		e := newError(KindInterpolationEvaluation, p.text, offset, in.Raw(), ErrNoEvaluator)
		e.Expr = in.Expr
		return "", e
	}

	ctx, span := p.spans.StartEvalSpan(p.ctx, offset, in.Expr)
	start := time.Now()
	v, err := p.evaluator.Evaluate(ctx, in.Expr)
	elapsed := time.Since(start)
	p.evaluations++
	p.metrics.RecordEvaluation(ctx, elapsed, err)
	p.spans.EndSpanWithError(span, err)
	observability.LogEvaluation(p.logger, offset, in.Expr, float64(elapsed.Microseconds())/1000)
	if err != nil {
		e := newError(KindInterpolationEvaluation, p.text, offset, in.Raw(), err)
		e.Expr = in.Expr
		return "", e
	}
	return v, nil
}

// defaultRenderer is the package-level renderer with default settings.
var defaultRenderer = NewRenderer()

// Raw returns text unchanged using the default renderer.
//
// Example:
//
//	quasi.Raw(`C:\path #{x}`) // `C:\path #{x}`
func Raw(text string) string {
	return defaultRenderer.Raw(text)
}

// RawWords splits text into words using the default renderer.
//
// Example:
//
//	quasi.RawWords(`  a\ b  c `) // ["a b", "c"]
func RawWords(text string) []string {
	return defaultRenderer.RawWords(text)
}

// Interpolated renders text in interpolated string mode using eval.
//
// Example:
//
//	s, _ := quasi.Interpolated(ctx, "Hello, #{name}!", quasi.MapEvaluator{"name": "Brian"})
//	// s: "Hello, Brian!"
func Interpolated(ctx context.Context, text string, eval Evaluator) (string, error) {
	return defaultRenderer.withEvaluator(eval).Interpolated(ctx, text)
}

// InterpolatedWords renders text in interpolated word mode using eval.
//
// Example:
//
//	ws, _ := quasi.InterpolatedWords(ctx, "foo #{x}\\tbar", quasi.MapEvaluator{"x": "y z"})
//	// ws: ["foo", "y z\tbar"]
func InterpolatedWords(ctx context.Context, text string, eval Evaluator) ([]string, error) {
	return defaultRenderer.withEvaluator(eval).InterpolatedWords(ctx, text)
}
