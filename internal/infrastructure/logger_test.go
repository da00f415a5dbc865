package infrastructure

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fipulse/internal/config"
)

func TestInitializeLoggerWritesJSONToFile(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "test.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	logger.Info("dataset loaded", "records", 42)
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "dataset loaded", entry["msg"])
	assert.Equal(t, float64(42), entry["records"])
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	dir := t.TempDir()
	logPath := filepath.Join(dir, "trace.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "handling request")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trace_id":"trace-123"`)
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.NotEmpty(t, id)

	// An existing trace ID is preserved.
	again := EnsureTraceID(ctx)
	assert.Equal(t, id, GetTraceID(again))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input).String(), tt.input)
	}
}
