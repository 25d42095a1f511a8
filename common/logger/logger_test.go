package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext_AddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json")

	ctx := ContextWithTraceID(context.Background(), "trace-123")
	log.WithContext(ctx).WithPackage("com.example.pkg").Info("synced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "com.example.pkg", entry["package"])
	assert.Equal(t, "synced", entry["msg"])
}

func TestWithContext_NoTraceID(t *testing.T) {
	log := Discard()
	assert.Same(t, log, log.WithContext(context.Background()))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Error("visible", "error", "boom")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "stack")
}

func TestWithRelease(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "debug", "json").WithRelease("com.example.pkg", "1.2.0").Debug("created release")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "com.example.pkg", entry["package"])
	assert.Equal(t, "1.2.0", entry["version"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info+2":  slog.LevelInfo + 2,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestTextFormatWithoutColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "info", "text").Info("hello", "package", "com.example.pkg")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "package=com.example.pkg")
	assert.NotContains(t, buf.String(), "\x1b[")
}
