package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog for structured logging
type Logger struct {
	*slog.Logger
	closer io.Closer
}

type contextKey string

// RequestIDKey is the context key holding the request id
const RequestIDKey contextKey = "request_id"

// Options configures the log output
type Options struct {
	Level string
	// File, when set, receives a copy of every record through a rotating writer
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New creates a logger writing JSON records to stdout
func New(level string) *Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a logger writing JSON records to stdout and,
// when opts.File is set, to a size-rotated file.
func NewWithOptions(opts Options) *Logger {
	var out io.Writer = os.Stdout
	var closer io.Closer

	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})

	return &Logger{Logger: slog.New(handler), closer: closer}
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ContextWithRequestID stores a request id in ctx
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, if any
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	return requestID, ok && requestID != ""
}

// FromContext returns base annotated with the request id stored in ctx
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if requestID, ok := RequestIDFromContext(ctx); ok {
		return base.With("request_id", requestID)
	}
	return base
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
