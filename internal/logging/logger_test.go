package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(Options{Level: "debug", Format: "json", Writer: &buf, Component: " loop "})

	lg.Debug("turn started", "turn", 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "turn started", entry["msg"])
	assert.Equal(t, "loop", entry["component"])
	assert.Equal(t, float64(1), entry["turn"])
}

func TestNewLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(Options{Level: "warn", Writer: &buf})

	lg.Info("hidden")
	lg.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestOrDiscard_NilReturnsUsableLogger(t *testing.T) {
	lg := OrDiscard(nil)
	require.NotNil(t, lg)
	lg.Info("nothing happens")
}
