// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/puterbatch/internal/config"
	"github.com/phrazzld/puterbatch/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, logger.ParseLevel(tc.name, nil))
		})
	}
}

func TestParseLevelInvalidWarns(t *testing.T) {
	var warn bytes.Buffer

	level := logger.ParseLevel("verbose", &warn)

	assert.Equal(t, slog.LevelInfo, level)
	assert.Contains(t, warn.String(), "invalid log level configured")
	assert.Contains(t, warn.String(), "verbose")
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "task_id", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(7), entry["task_id"])
}

func TestSetupSetsDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	l, err := logger.Setup(config.LogConfig{Level: "debug"})

	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestTestLogBuffer(t *testing.T) {
	l, buf := logger.GetTestLogger(t)

	l.Info("task failed", "task_id", 3, "error", "boom")

	logger.AssertLogContains(t, buf, "task failed")
	logger.AssertLogField(t, buf, "task_id", float64(3))
	logger.AssertLogField(t, buf, "error", "boom")

	buf.Reset()
	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
