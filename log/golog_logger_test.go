package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGologLogger(t *testing.T) {
	logger := NewGologLogger(golog.New())

	assert.NotNil(t, logger)
	assert.Equal(t, LogLevelInfo, logger.GetLevel())
}

func TestGologLogger_LevelControl(t *testing.T) {
	logger := New(LogLevelInfo)

	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())

	logger.SetLevel(LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())

	logger.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, logger.GetLevel())
}

func TestGologLogger_FormatsMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LogLevelDebug)
	logger.SetOutput(&buf)

	logger.Info("expanded %s into %d children", "node-1", 6)

	assert.Contains(t, buf.String(), "expanded node-1 into 6 children")
}

func TestGologLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LogLevelWarn)
	logger.SetOutput(&buf)

	server := logger.Named("server")
	assert.Equal(t, LogLevelWarn, server.GetLevel())

	server.Warn("listening on %s", ":8080")
	assert.Contains(t, buf.String(), "server: listening on :8080")

	buf.Reset()
	logger.Warn("plain")
	assert.NotContains(t, buf.String(), "server:")
}

func TestGologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LogLevelError)
	logger.SetOutput(&buf)

	logger.Debug("filtered")
	logger.Info("filtered")
	logger.Warn("filtered")
	assert.Empty(t, buf.String())

	logger.Error("persistence write failed: %v", "disk full")
	assert.Contains(t, buf.String(), "disk full")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"", LogLevelInfo},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"off", LogLevelNone},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestDefaultLogger_Replace(t *testing.T) {
	orig := GetDefaultLogger()
	defer SetDefaultLogger(orig)

	SetDefaultLogger(nil)
	_, ok := GetDefaultLogger().(*NoOpLogger)
	assert.True(t, ok)

	rec := &Recorder{}
	SetDefaultLogger(rec)
	GetDefaultLogger().Warn("dropped %d edges", 2)
	assert.Equal(t, []Entry{{Level: LogLevelWarn, Message: "dropped 2 edges"}}, rec.Entries(LogLevelDebug))
}

func TestRecorder_Entries(t *testing.T) {
	rec := &Recorder{}
	rec.Debug("a")
	rec.Info("b")
	rec.Error("c %d", 1)

	assert.Len(t, rec.Entries(LogLevelDebug), 3)
	assert.Equal(t, []Entry{{Level: LogLevelError, Message: "c 1"}}, rec.Entries(LogLevelWarn))
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "UNKNOWN(42)", LogLevel(42).String())
}
