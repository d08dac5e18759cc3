package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/oliverbestmann/fxfactory/manifest"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("whatever"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(manifest.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept", slog.Int("slot", 3))

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"slot":3`)
}

func TestFormatSlots(t *testing.T) {
	assert.Equal(t, "-", formatSlots(nil))
	assert.Equal(t, "0,2,7", formatSlots([]int{0, 2, 7}))
	assert.Equal(t, "(unnamed)", displayName(""))
}

func TestRunMissingManifest(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run("/nonexistent/materials.yaml", "", "", &out))
	assert.Empty(t, out.String())
}
