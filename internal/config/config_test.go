package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, "", cfg.Journal)
	assert.Equal(t, FlowTokensUUIDv7, cfg.FlowTokens)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.False(t, cfg.Tracing())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"MULTISTORE_LOG_LEVEL":     "debug",
		"MULTISTORE_LOG_FORMAT":    "json",
		"MULTISTORE_JOURNAL":       "/tmp/rounds.db",
		"MULTISTORE_FLOW_TOKENS":   "sequential",
		"MULTISTORE_OTEL_ENDPOINT": "http://localhost:4318",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Tracing())
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)

	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, "/tmp/rounds.db", cfg.Journal)
	assert.Equal(t, FlowTokensSequential, cfg.FlowTokens)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"level", map[string]string{"MULTISTORE_LOG_LEVEL": "loud"}},
		{"format", map[string]string{"MULTISTORE_LOG_FORMAT": "xml"}},
		{"flow tokens", map[string]string{"MULTISTORE_FLOW_TOKENS": "random"}},
		{"otel endpoint", map[string]string{"MULTISTORE_OTEL_ENDPOINT": "localhost:4318"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Config{LogLevel: "info", LogFormat: LogFormatJSON})

	logger.Debug("hidden")
	logger.Info("round committed", "seq", 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line: %s", buf.String())
	assert.Equal(t, "round committed", entry["msg"])
	assert.Equal(t, float64(1), entry["seq"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Config{LogLevel: "warn", LogFormat: LogFormatText})

	logger.Info("hidden")
	logger.Warn("round failed")

	assert.Contains(t, buf.String(), "msg=\"round failed\"")
	assert.NotContains(t, buf.String(), "hidden")
}
