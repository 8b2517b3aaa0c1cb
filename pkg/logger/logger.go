// Package logger wraps zerolog as the logging collaborator injected into
// repositories and managers.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	JSONLoggingFormat = "json"

	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelSilent  = "silent"

	ContextKeyRequestID     contextKey = "requestID"
	ContextKeyCorrelationID contextKey = "correlationID"
)

// Config controls the level and output format of a Logger
type Config struct {
	Level  string `json:"level" yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	Format string `json:"format" yaml:"format" envconfig:"LOG_FORMAT" default:"json"`
}

type Logger struct {
	zerolog.Logger
}

// New writes to stdout
func New(level, format string) Logger {
	return NewWithWriter(level, format, os.Stdout)
}

// FromConfig builds a Logger from cfg
func FromConfig(cfg Config) Logger {
	return New(cfg.Level, cfg.Format)
}

func NewWithWriter(level, format string, w io.Writer) Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})

	if format == JSONLoggingFormat {
		logger = zerolog.New(w)
	}

	logger = logger.Level(parseLevel(level)).With().Timestamp().Logger()

	return Logger{
		Logger: logger,
	}
}

// Nop discards every event
func Nop() Logger {
	return Logger{Logger: zerolog.Nop()}
}

// Component tags every event with the emitting component
func (l Logger) Component(name string) Logger {
	return Logger{Logger: l.With().Str("component", name).Logger()}
}

func (l Logger) WithContext(ctx context.Context) zerolog.Logger {
	logger := l.Logger

	if correlationID, ok := ctx.Value(ContextKeyCorrelationID).(string); ok && correlationID != "" {
		logger = logger.With().Str("correlation_id", correlationID).Logger()
	}

	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn, LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelSilent:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
