package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the quasi tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("quasi")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartRenderSpan starts a span for one render call.
	StartRenderSpan(ctx context.Context, mode, renderID string) (context.Context, trace.Span)

	// StartEvalSpan starts a span for one interpolation evaluation.
	// It should be a child of the render span.
	StartEvalSpan(ctx context.Context, offset int, expr string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRenderSpan starts a render span.
func (m *otelSpanManager) StartRenderSpan(ctx context.Context, mode, renderID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "quasi.render",
		trace.WithAttributes(
			attribute.String("render.mode", mode),
			attribute.String("render.id", renderID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEvalSpan starts an evaluation span.
func (m *otelSpanManager) StartEvalSpan(ctx context.Context, offset int, expr string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "quasi.eval",
		trace.WithAttributes(
			attribute.Int("eval.offset", offset),
			attribute.String("eval.expr", expr),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
