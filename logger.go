package simpleknn

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with consistent field names for the
// ingestion, indexing and reduction stages.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON records to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithCount adds a point count field.
func (l *Logger) WithCount(n int) *Logger {
	return &Logger{Logger: l.Logger.With("points", n)}
}

// WithMode adds the reduction mode field.
func (l *Logger) WithMode(m Mode) *Logger {
	return &Logger{Logger: l.Logger.With("mode", string(m))}
}

// LogStage logs completion of one pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage string, elapsed time.Duration) {
	l.DebugContext(ctx, "stage completed",
		"stage", stage,
		"elapsed", elapsed,
	)
}

// LogCompute logs the outcome of a whole invocation.
func (l *Logger) LogCompute(ctx context.Context, n int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mean distance computation failed",
			"points", n,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "mean distance computation completed",
		"points", n,
		"elapsed", elapsed,
	)
}
