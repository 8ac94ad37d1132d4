package log

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestLoggerTextOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: DebugLevel, Output: &buf})
	l.now = fixedClock

	l.Debug("visitor registered", "visitor", "store-origin", "node", 4)

	assert.Equal(t, "[2024-03-01 12:00:00] DEBUG: visitor registered visitor=store-origin node=4\n", buf.String())
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: WarnLevel, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "WARN: shown")

	buf.Reset()
	l.SetLevel(DebugLevel)
	l.Debug("now shown")
	assert.Contains(t, buf.String(), "now shown")
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: InfoLevel, Output: &buf, JSONOutput: true})
	l.now = fixedClock

	l.Info("walk finished", "steps", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "walk finished", entry["message"])
	assert.Equal(t, "3", entry["steps"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestFormatMessageOddArgs(t *testing.T) {
	assert.Equal(t, "msg extra k=v", formatMessage("msg", "extra", "k", "v"))
}
