package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	return line
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"info+2":  slog.LevelInfo + 2,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.Warn("kept", "user_id", "42")
	line := decodeLine(t, &buf)
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "42", line["user_id"])
	assert.Equal(t, ServiceName, line["service"])
	assert.NotEmpty(t, line["ts"])
	assert.NotContains(t, line, "time")
}

func TestContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")
	ctx := IntoContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	FromContext(With(ctx, "user_id", "u-1")).Info("hello")
	line := decodeLine(t, &buf)
	assert.Equal(t, "u-1", line["user_id"])

	buf.Reset()
	FromContext(ctx).Info("untouched")
	assert.NotContains(t, decodeLine(t, &buf), "user_id")
}
