// Package logger provides module-scoped structured logging on top of log/slog.
//
// Components receive a Logger and derive their own scope with Module:
//
//	log := logger.New(os.Stdout, logger.LevelInfo, "json")
//	sections := log.Module("sections")
//	sections.Info("section created", logger.Uint64("section_id", s.ID))
package logger

import (
	"context"
	"strings"
	"time"
)

// Level is a log severity name as it appears in configuration.
type Level string

const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel maps a configuration string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelTrace:
		return LevelTrace
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is the logging interface injected into services and handlers.
type Logger interface {
	Module(name string) Logger
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Duration renders the value as a string such as "1.5s".
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time renders the value in RFC 3339.
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Date renders the value as YYYY-MM-DD.
func Date(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format("2006-01-02")}
}

// Error always uses the key "error".
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}
