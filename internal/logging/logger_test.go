package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	logger, cleanup, err := New(Config{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("task finished", zap.String("task_type", "cli"), zap.Int("task_index", 2))
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "task finished", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "cli", entry["task_type"])
	assert.Equal(t, float64(2), entry["task_index"])
	assert.Contains(t, entry, "ts")
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, cleanup, err := New(Config{Level: "warn", File: path})
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_NoFileIsNop(t *testing.T) {
	logger, cleanup, err := New(Config{})
	require.NoError(t, err)
	defer cleanup()
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, cleanup, err := New(Config{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	require.Error(t, err)
	cleanup()
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := LevelFromString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("api_key", "sk-or-123456")
	assert.Equal(t, "[REDACTED:12]", f.String)
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	tl.With(zap.String("run_id", "abc")).Warn("unknown task type", zap.String("task_type", "deploy"))

	tl.AssertLogged(t, zapcore.WarnLevel, "unknown task")
	tl.AssertField(t, "unknown task", "task_type", "deploy")
	tl.AssertField(t, "unknown task", "run_id", "abc")
	assert.Len(t, tl.All(), 1)
}
