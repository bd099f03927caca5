package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Options configures the default logger behavior.
type Options struct {
	Level  slog.Level // Minimum log level
	Writer io.Writer  // Output writer (default: os.Stderr)
}

// Option configures logger behavior.
type Option func(*Options)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

// slogLogger implements Logger on top of a slog text handler.
type slogLogger struct {
	handler slog.Handler
	attrs   []slog.Attr
}

// New creates a new Logger with the given options.
func New(opts ...Option) Logger {
	options := Options{
		Level:  slog.LevelInfo,
		Writer: os.Stderr,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Writer == nil {
		options.Writer = os.Stderr
	}

	handler := slog.NewTextHandler(options.Writer, &slog.HandlerOptions{
		Level: options.Level,
	})

	return &slogLogger{handler: handler}
}

// With returns a new Logger with the given key-value pairs attached.
func (l *slogLogger) With(kv ...any) Logger {
	attrs := kvToAttrs(kv)
	newAttrs := append([]slog.Attr{}, l.attrs...)
	newAttrs = append(newAttrs, attrs...)

	return &slogLogger{
		handler: l.handler,
		attrs:   newAttrs,
	}
}

// Debug logs a debug message.
func (l *slogLogger) Debug(msg string, kv ...any) {
	l.log(slog.LevelDebug, msg, kvToAttrs(kv))
}

// Info logs an informational message.
func (l *slogLogger) Info(msg string, kv ...any) {
	l.log(slog.LevelInfo, msg, kvToAttrs(kv))
}

// Warn logs a warning message.
func (l *slogLogger) Warn(msg string, kv ...any) {
	l.log(slog.LevelWarn, msg, kvToAttrs(kv))
}

// Error logs an error message.
func (l *slogLogger) Error(err error, msg string, kv ...any) {
	attrs := kvToAttrs(kv)
	if err != nil {
		attrs = append([]slog.Attr{slog.Any("error", err)}, attrs...)
	}
	l.log(slog.LevelError, msg, attrs)
}

func (l *slogLogger) log(level slog.Level, msg string, attrs []slog.Attr) {
	if !l.handler.Enabled(context.Background(), level) {
		return
	}

	allAttrs := append([]slog.Attr{}, l.attrs...)
	allAttrs = append(allAttrs, attrs...)

	record := slog.NewRecord(time.Now(), level, msg, 0)
	record.AddAttrs(allAttrs...)
	_ = l.handler.Handle(context.Background(), record)
}

// kvToAttrs converts key-value pairs to a slog.Attr slice.
// Pairs produced by Str/Int/Bool arrive as nested []any 2-tuples and are
// flattened first.
func kvToAttrs(kv []any) []slog.Attr {
	flat := make([]any, 0, len(kv))
	for _, item := range kv {
		switch v := item.(type) {
		case []any:
			if len(v) == 2 {
				flat = append(flat, v[0], v[1])
			} else {
				flat = append(flat, v)
			}
		default:
			flat = append(flat, v)
		}
	}

	attrs := make([]slog.Attr, 0, len(flat)/2)
	for i := 0; i < len(flat)-1; i += 2 {
		key := fmt.Sprintf("%v", flat[i])
		attrs = append(attrs, slog.Any(key, flat[i+1]))
	}
	return attrs
}
