package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewEmitsJSONWithUTCTimestamps(t *testing.T) {
	out := &bytes.Buffer{}
	logger, err := New(Options{Level: "info", Format: "json", Output: out})
	require.NoError(t, err)

	logger.Info("session started", "stage", "capture")

	var line map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &line))
	require.Equal(t, "session started", line["msg"])
	require.Equal(t, "capture", line["stage"])

	ts, ok := line["time"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	require.Equal(t, time.UTC, parsed.Location())
}

func TestNewConsoleFormat(t *testing.T) {
	out := &bytes.Buffer{}
	logger, err := New(Options{Level: "debug", Format: "console", Output: out})
	require.NoError(t, err)

	logger.Debug("probe")
	require.Contains(t, out.String(), "msg=probe")
}

func TestNewFiltersBelowLevel(t *testing.T) {
	out := &bytes.Buffer{}
	logger, err := New(Options{Level: "warn", Format: "json", Output: out})
	require.NoError(t, err)

	logger.Info("dropped")
	require.Zero(t, out.Len())

	logger.Warn("kept")
	require.Contains(t, out.String(), "kept")
}

func TestNewNormalizesWarningAlias(t *testing.T) {
	_, err := New(Options{Level: "warning", Format: "json"})
	require.NoError(t, err)
}

func TestNewRejectsUnknownOptions(t *testing.T) {
	_, err := New(Options{Level: "verbose", Format: "json"})
	require.Error(t, err)

	_, err = New(Options{Level: "info", Format: "yaml"})
	require.Error(t, err)
}
