// Package observability provides structured logging, metrics and tracing
// for quasi renders.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds render context to a logger.
// Returns a new logger with render_id and mode fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "9f1c...", "qq")
//	enriched.Info("rendering") // includes render_id, mode
func EnrichLogger(logger *slog.Logger, renderID, mode string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("render_id", renderID),
		slog.String("mode", mode),
	)
}

// LogRenderStart logs the start of a render.
func LogRenderStart(logger *slog.Logger, templateBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("render starting",
		slog.Int("template_bytes", templateBytes),
	)
}

// LogRenderComplete logs a successful render.
// outputs is 1 for string modes and the word count for word modes.
func LogRenderComplete(logger *slog.Logger, durationMs float64, outputs, evaluations int) {
	if logger == nil {
		return
	}
	logger.Debug("render completed",
		slog.Float64("duration_ms", durationMs),
		slog.Int("outputs", outputs),
		slog.Int("evaluations", evaluations),
	)
}

// LogRenderError logs a failed render.
func LogRenderError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Warn("render failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvaluation logs one interpolation evaluation.
func LogEvaluation(logger *slog.Logger, offset int, expr string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("interpolation evaluated",
		slog.Int("offset", offset),
		slog.String("expr", expr),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCacheHit logs a render served from the cache.
func LogCacheHit(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Debug("cache hit",
		slog.String("key", key),
	)
}

// LogCacheError logs a cache failure (non-fatal).
func LogCacheError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("cache failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
