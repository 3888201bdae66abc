// Package logging provides the zerolog-based structured logger shared by
// every steamctl component. Loggers travel on the context; components pull
// them back out with FromContext and tag their events with a component field.
package logging

import (
	"context"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Invalid or empty
	// values fall back to info.
	Level string

	// Format selects "console" (human-readable) or "json" output.
	Format string

	// File, when non-empty, receives log output instead of stderr.
	// Console/json formatting still applies.
	File string

	// Caller includes the caller file:line in each event.
	Caller bool
}

type traceIDKey struct{}

// New builds a zerolog.Logger from cfg. When cfg.File cannot be opened the
// logger falls back to stderr so events are never dropped silently.
func New(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		if f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); openErr == nil {
			out = f
		}
	}

	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Caller {
		logger = logger.Caller()
	}
	return logger.Logger()
}

// ComponentLogger returns a child logger tagged with a component field.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger attached to ctx, or a disabled logger when
// none was attached. Attach one with zerolog's logger.WithContext(ctx).
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// ContextWithTraceID stores a trace ID on the context and stamps it onto the
// context logger so all downstream events carry it.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	ctx = context.WithValue(ctx, traceIDKey{}, traceID)
	logger := FromContext(ctx).With().Str("trace_id", traceID).Logger()
	return logger.WithContext(ctx)
}

// TraceIDFromContext returns the trace ID stored on ctx, or empty.
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// GetOrGenerateTraceID returns the trace ID already on ctx, generating a new
// ULID when absent.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return NewID()
}

// NewID generates a lexicographically sortable ULID. Used for trace IDs and
// per-run identifiers.
func NewID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // IDs, not secrets.
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
