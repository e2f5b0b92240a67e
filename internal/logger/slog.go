package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// levelTrace sits below slog.LevelDebug.
const levelTrace = slog.Level(-8)

type contextKey string

// RequestIDKey is the context key read by WithContext.
const RequestIDKey contextKey = "request_id"

// SlogLogger implements Logger with a slog.Logger.
type SlogLogger struct {
	base   *slog.Logger
	module string
}

// New creates a logger writing to w. format is "json" or "text"; a nil writer means stdout.
func New(w io.Writer, level Level, format string) *SlogLogger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level: toSlogLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == levelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &SlogLogger{base: slog.New(handler)}
}

// Discard returns a logger that drops everything; used in tests.
func Discard() *SlogLogger {
	return New(io.Discard, LevelError, "json")
}

func (l *SlogLogger) Module(name string) Logger {
	module := name
	if l.module != "" {
		module = l.module + "." + name
	}
	return &SlogLogger{base: l.base, module: module}
}

func (l *SlogLogger) With(fields ...Field) Logger {
	return &SlogLogger{base: l.base.With(toArgs(fields)...), module: l.module}
}

func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return l.With(String("request_id", id))
	}
	return l
}

func (l *SlogLogger) Trace(msg string, fields ...Field) { l.log(levelTrace, msg, fields) }
func (l *SlogLogger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *SlogLogger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *SlogLogger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *SlogLogger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *SlogLogger) log(level slog.Level, msg string, fields []Field) {
	ctx := context.Background()
	if !l.base.Enabled(ctx, level) {
		return
	}
	args := toArgs(fields)
	if l.module != "" {
		args = append([]any{slog.String("module", l.module)}, args...)
	}
	l.base.Log(ctx, level, msg, args...)
}

func toArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case LevelTrace:
		return levelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
