// Package logger holds the process-wide zerolog logger and helpers that
// stamp events with the active trace.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger discards everything until Init is called
var Logger = zerolog.Nop()

// Options configures Init
type Options struct {
	Service     string
	Version     string
	Environment string
	Level       string
	// Console switches to the human-readable writer
	Console bool
	// Output defaults to stdout
	Output io.Writer
}

// Init replaces the global logger
func Init(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	fields := zerolog.New(out).With().Timestamp().Str("service", opts.Service)
	if opts.Version != "" {
		fields = fields.Str("version", opts.Version)
	}
	if opts.Environment != "" {
		fields = fields.Str("env", opts.Environment)
	}
	Logger = fields.Logger().Level(ParseLevel(opts.Level))
	log.Logger = Logger
}

// ParseLevel maps a level name to a zerolog level. Unknown names are info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithContext returns the global logger with trace_id and span_id of the
// span in ctx, if any.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Logger
	if ctx == nil {
		return &l
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &l
}

func Debug(ctx context.Context) *zerolog.Event { return WithContext(ctx).Debug() }
func Info(ctx context.Context) *zerolog.Event  { return WithContext(ctx).Info() }
func Warn(ctx context.Context) *zerolog.Event  { return WithContext(ctx).Warn() }
func Error(ctx context.Context) *zerolog.Event { return WithContext(ctx).Error() }
