package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace":    TRACE,
		"DEBUG":    DEBUG,
		" info ":   INFO,
		"warn":     WARN,
		"warning":  WARN,
		"error":    ERROR,
		"critical": CRITICAL,
		"bogus":    INFO,
		"":         INFO,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLoggerFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, WARN)
	log.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	log.Debug("hidden %d", 1)
	log.Info("hidden")
	log.Warn("tick %d saturated", 7)
	log.Critical("stop")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-01-02T03:04:05Z [WARN] tick 7 saturated", lines[0])
	assert.Equal(t, "2024-01-02T03:04:05Z [CRITICAL] stop", lines[1])

	assert.False(t, log.Enabled(INFO))
	log.SetMinLevel(TRACE)
	assert.True(t, log.Enabled(TRACE))
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servo.log")

	log, err := NewFileLogger(path, INFO, false)
	require.NoError(t, err)
	log.Info("Pos=%v", 1.2)
	require.NoError(t, log.Close())

	// Writes after close are dropped
	log.Info("late")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] Pos=1.2")
	assert.NotContains(t, string(data), "late")
}
