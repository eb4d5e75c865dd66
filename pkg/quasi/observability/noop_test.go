package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

// TestNoopMetrics verifies NoopMetrics accepts all calls.
func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func()
	}{
		{name: "render success", fn: func() { m.RecordRender(ctx, "qq", time.Millisecond, nil) }},
		{name: "render error", fn: func() { m.RecordRender(ctx, "qq", time.Millisecond, errors.New("x")) }},
		{name: "evaluation", fn: func() { m.RecordEvaluation(ctx, 0, nil) }},
		{name: "words", fn: func() { m.RecordWords(ctx, "w", 3) }},
		{name: "nil context", fn: func() { m.RecordRender(nil, "", 0, nil) }}, //nolint:staticcheck // nil ctx is the case under test
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, tt.fn)
		})
	}
}

// TestNoopSpanManager verifies NoopSpanManager passes the context through.
func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	t.Run("returns input context", func(t *testing.T) {
		got, span := sm.StartRenderSpan(ctx, "qq", "r")
		assert.Equal(t, ctx, got)
		assert.NotNil(t, span)
		assert.False(t, span.IsRecording())

		got, span = sm.StartEvalSpan(ctx, 0, "x")
		assert.Equal(t, ctx, got)
		assert.False(t, span.IsRecording())
	})

	t.Run("end and events do not panic", func(t *testing.T) {
		_, span := sm.StartRenderSpan(ctx, "qq", "r")
		assert.NotPanics(t, func() {
			sm.AddSpanEvent(ctx, "event", attribute.String("k", "v"))
			sm.EndSpanWithError(span, errors.New("x"))
			sm.EndSpanWithError(nil, nil)
		})
	})
}
