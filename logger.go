package featprep

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with featprep-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithFeatures adds a feature-count field to the logger.
func (l *Logger) WithFeatures(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("features", n),
	}
}

// WithObjects adds an object-count field to the logger.
func (l *Logger) WithObjects(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("objects", n),
	}
}

// LogExtract logs an extraction pass.
func (l *Logger) LogExtract(ctx context.Context, objects, features int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "extraction failed",
			"objects", objects,
			"features", features,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "extraction completed",
			"objects", objects,
			"features", features,
		)
	}
}

// LogSave logs a model save operation.
func (l *Logger) LogSave(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model saved",
			"name", name,
			"bytes", size,
		)
	}
}

// LogLoad logs a model load operation.
func (l *Logger) LogLoad(ctx context.Context, name string, features int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model loaded",
			"name", name,
			"features", features,
		)
	}
}
