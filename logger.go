package poolgraph

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with poolgraph-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithGraph tags the logger with a graph name.
func (l *Logger) WithGraph(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("graph", name),
	}
}

// LogValidate logs the outcome of an invariant check.
func (l *Logger) LogValidate(ctx context.Context, vertices, edges int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph validation failed",
			"vertices", vertices,
			"edges", edges,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "graph validated",
			"vertices", vertices,
			"edges", edges,
		)
	}
}

// LogExport logs an export operation.
func (l *Logger) LogExport(ctx context.Context, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"bytes_written", bytes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "graph exported",
			"bytes", bytes,
		)
	}
}

// LogImport logs an import operation.
func (l *Logger) LogImport(ctx context.Context, vertices, edges int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "import failed",
			"vertices", vertices,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "graph imported",
			"vertices", vertices,
			"edges", edges,
		)
	}
}

// LogClose logs the release of the graph's arenas.
func (l *Logger) LogClose(ctx context.Context, reservedBytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "graph closed",
			"released_bytes", reservedBytes,
		)
	}
}
