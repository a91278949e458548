// Package logging wraps slog with the field names used across geokernel.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with geokernel-specific helpers.
type Logger struct {
	*slog.Logger
}

// nopHandler discards every record. Enabled returns false so callers skip
// formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return New(os.Stderr, level, "text")
}

// NewJSONLogger creates a Logger that writes JSON records to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return New(os.Stderr, level, "json")
}

// New creates a Logger writing to w in the given format ("text" or "json").
func New(w io.Writer, level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return NewLogger(slog.NewJSONHandler(w, opts))
	}
	return NewLogger(slog.NewTextHandler(w, opts))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(nopHandler{})}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// With returns a Logger carrying extra fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithModel tags records with a model name.
func (l *Logger) WithModel(name string) *Logger {
	return l.With("model", name)
}

// LogMerge logs a merge of a donor holding donorPosis positions.
func (l *Logger) LogMerge(ctx context.Context, donorPosis int, err error) {
	if err != nil {
		l.WarnContext(ctx, "merge failed", "error", err)
		return
	}
	l.DebugContext(ctx, "merge completed", "donor_positions", donorPosis)
}

// LogPurge logs a purge and the number of slots it dropped.
func (l *Logger) LogPurge(ctx context.Context, dropped int) {
	l.DebugContext(ctx, "purge completed", "dropped", dropped)
}

// LogTriangulate logs a face that could not be triangulated.
func (l *Logger) LogTriangulate(ctx context.Context, face int, err error) {
	if err != nil {
		l.WarnContext(ctx, "triangulation failed", "face", face, "error", err)
	}
}

// LogCompare logs a comparison summary.
func (l *Logger) LogCompare(ctx context.Context, score, total, percent int) {
	l.DebugContext(ctx, "compare completed",
		"score", score,
		"total", total,
		"percent", percent,
	)
}
