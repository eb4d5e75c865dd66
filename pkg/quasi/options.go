package quasi

import (
	"log/slog"

	"github.com/randalmurphal/quasi/pkg/quasi/observability"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithEvaluator sets the evaluator used for #{...} interpolations.
//
// Default: none. Rendering an interpolation without an evaluator fails with
// ErrNoEvaluator.
//
// Example:
//
//	r := NewRenderer(WithEvaluator(MapEvaluator{"name": "Brian"}))
//	s, _ := r.Interpolated(ctx, "Hello, #{name}!")
//	// s: "Hello, Brian!"
func WithEvaluator(e Evaluator) Option {
	return func(r *Renderer) {
		r.evaluator = e
	}
}

// WithLogger sets the logger for render events.
//
// Default: nil (no logging). Render start, completion and each evaluation
// are logged at Debug, failures at Warn.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
//
// Default: false
func WithMetrics(enabled bool) Option {
	return func(r *Renderer) {
		if enabled {
			r.metrics = observability.NewMetricsRecorder()
		} else {
			r.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a specific metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(r *Renderer) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry tracing using the global tracer provider.
// Each render gets a quasi.render span with a quasi.eval child per
// interpolation.
//
// Default: false
func WithTracing(enabled bool) Option {
	return func(r *Renderer) {
		if enabled {
			r.spans = observability.NewSpanManager()
		} else {
			r.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a specific span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(r *Renderer) {
		if s != nil {
			r.spans = s
		}
	}
}

// WithHashEscapeInWords controls whether \# is accepted in interpolated word
// mode. It is always accepted in interpolated string mode.
//
// Default: true
//
// Example:
//
//	r := NewRenderer(WithHashEscapeInWords(false))
//	_, err := r.InterpolatedWords(ctx, `\#{x}`)
//	// errors.Is(err, ErrInvalidEscapeSequence) == true
func WithHashEscapeInWords(enabled bool) Option {
	return func(r *Renderer) {
		r.hashEscapeInWords = enabled
	}
}

// WithRenderIDFunc sets the function that generates render IDs.
//
// Default: uuid.NewString
func WithRenderIDFunc(fn func() string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.newID = fn
		}
	}
}
