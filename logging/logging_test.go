package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Config{Level: "warn", Format: "json"})

	logger.Info("dropped")
	logger.Warn("kept", slog.Int("iterations", 7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, 7.0, rec["iterations"])
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Config{Level: "debug"})

	logger.Debug("simplex state change", slog.String("to", "optimal"))
	assert.Contains(t, buf.String(), "to=optimal")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twophase.log")
	logger, closeFn, err := New(Config{Level: "info", Format: "json", File: path, MaxSize: 1})
	require.NoError(t, err)

	logger.Info("benchmark size done", slog.String("size", "2x2"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"size":"2x2"`)
}

func TestUnknownFormat(t *testing.T) {
	_, _, err := New(Config{Format: "xml"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
