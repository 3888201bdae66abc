package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "debug", level: "debug", want: zerolog.DebugLevel},
		{name: "warn", level: "warn", want: zerolog.WarnLevel},
		{name: "empty defaults to info", level: "", want: zerolog.InfoLevel},
		{name: "garbage defaults to info", level: "loud", want: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(Config{Level: tt.level})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steamctl.log")
	logger := New(Config{Level: "info", Format: "json", File: path})

	logger.Info().Str("component", "test").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestNewFileFallback(t *testing.T) {
	// An unopenable file path falls back to stderr rather than failing.
	logger := New(Config{File: filepath.Join(t.TempDir(), "missing", "steamctl.log")})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestComponentLogger(t *testing.T) {
	var buf strings.Builder
	base := zerolog.New(&buf)

	logger := ComponentLogger(base, "installer")
	logger.Info().Msg("ready")
	assert.Contains(t, buf.String(), `"component":"installer"`)
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	ctx = ContextWithTraceID(ctx, "trace-123")
	assert.Equal(t, "trace-123", TraceIDFromContext(ctx))
	assert.Equal(t, "trace-123", GetOrGenerateTraceID(ctx))
}

func TestGetOrGenerateTraceID(t *testing.T) {
	id := GetOrGenerateTraceID(context.Background())
	require.NotEmpty(t, id)
	assert.Len(t, id, 26) // ULID canonical encoding
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestFromContext(t *testing.T) {
	t.Run("missing logger is disabled", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
	})

	t.Run("attached logger round trips", func(t *testing.T) {
		var buf strings.Builder
		base := zerolog.New(&buf)
		ctx := base.WithContext(context.Background())

		FromContext(ctx).Info().Msg("from context")
		assert.Contains(t, buf.String(), "from context")
	})
}
