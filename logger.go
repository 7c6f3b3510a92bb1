package quickset

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is finer than slog.LevelDebug; LevelOff disables output.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelOff   = slog.Level(1000)
)

// Logger wraps slog.Logger with quickset-specific context. This
// provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler
// is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: LevelOff,
	})
	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel resolves a level string from configuration. Accepted:
// trace, debug, info, warn, error, off.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "off", "none":
		return LevelOff, true
	default:
		return slog.LevelInfo, false
	}
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(table string) *Logger {
	return &Logger{Logger: l.Logger.With("table", table)}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, table string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"table", table,
			"rows", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"table", table,
			"rows", count,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, table, column string, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"table", table,
			"column", column,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"table", table,
			"column", column,
			"results", resultsFound,
		)
	}
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, table string, id uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"table", table,
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"table", table,
			"id", id,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, table string, deleted int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"table", table,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"table", table,
			"deleted", deleted,
		)
	}
}
