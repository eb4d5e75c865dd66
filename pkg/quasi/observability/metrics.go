package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records render metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRender records a finished render with its duration and error status.
	RecordRender(ctx context.Context, mode string, duration time.Duration, err error)

	// RecordEvaluation records one interpolation evaluation.
	RecordEvaluation(ctx context.Context, duration time.Duration, err error)

	// RecordWords records how many words a word-mode render produced.
	RecordWords(ctx context.Context, mode string, count int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	renders       metric.Int64Counter
	renderLatency metric.Float64Histogram
	renderErrors  metric.Int64Counter
	evals         metric.Int64Counter
	evalLatency   metric.Float64Histogram
	evalErrors    metric.Int64Counter
	words         metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("quasi")

	renders, err := meter.Int64Counter("quasi.render.count",
		metric.WithDescription("Number of renders"),
	)
	if err != nil {
		return nil, err
	}

	renderLatency, err := meter.Float64Histogram("quasi.render.latency_ms",
		metric.WithDescription("Render latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	renderErrors, err := meter.Int64Counter("quasi.render.errors",
		metric.WithDescription("Number of failed renders"),
	)
	if err != nil {
		return nil, err
	}

	evals, err := meter.Int64Counter("quasi.eval.count",
		metric.WithDescription("Number of interpolation evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("quasi.eval.latency_ms",
		metric.WithDescription("Interpolation evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("quasi.eval.errors",
		metric.WithDescription("Number of failed interpolation evaluations"),
	)
	if err != nil {
		return nil, err
	}

	words, err := meter.Int64Histogram("quasi.words.count",
		metric.WithDescription("Words produced per word-mode render"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		renders:       renders,
		renderLatency: renderLatency,
		renderErrors:  renderErrors,
		evals:         evals,
		evalLatency:   evalLatency,
		evalErrors:    evalErrors,
		words:         words,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRender records a render.
func (m *otelMetrics) RecordRender(ctx context.Context, mode string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("success", err == nil),
	)
	m.renders.Add(ctx, 1, attrs)
	m.renderLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.renderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	}
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, duration time.Duration, err error) {
	m.evals.Add(ctx, 1)
	m.evalLatency.Record(ctx, float64(duration.Microseconds())/1000)
	if err != nil {
		m.evalErrors.Add(ctx, 1)
	}
}

// RecordWords records a word count.
func (m *otelMetrics) RecordWords(ctx context.Context, mode string, count int) {
	m.words.Record(ctx, int64(count), metric.WithAttributes(attribute.String("mode", mode)))
}
