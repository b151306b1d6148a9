package matrixstore

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with matrixstore-specific context.
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

// WithPath adds the data file path to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithShape adds the matrix shape to the logger.
func (l *Logger) WithShape(practices, dates int) *Logger {
	return &Logger{
		Logger: l.Logger.With("practices", practices, "dates", dates),
	}
}

// LogOpen logs opening a store.
func (l *Logger) LogOpen(ctx context.Context, path string, practices, dates int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store opened",
			"path", path,
			"practices", practices,
			"dates", dates,
		)
	}
}

// LogQuery logs a finished row sequence.
func (l *Logger) LogQuery(ctx context.Context, query string, rows int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"query", query,
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"query", query,
			"rows", rows,
			"elapsed", elapsed,
		)
	}
}

// LogDecodeFailure logs a blob that could not be decoded.
func (l *Logger) LogDecodeFailure(ctx context.Context, column string, size int, err error) {
	l.WarnContext(ctx, "decode failed",
		"column", column,
		"bytes", size,
		"error", err,
	)
}

// LogClose logs closing a store.
func (l *Logger) LogClose(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "store closed",
			"path", path,
		)
	}
}

// LogFetch logs a remote fetch.
func (l *Logger) LogFetch(ctx context.Context, name string, bytes int64, skipped bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fetch failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "fetch completed",
			"name", name,
			"bytes", bytes,
			"skipped", skipped,
		)
	}
}
