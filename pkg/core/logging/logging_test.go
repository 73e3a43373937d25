package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"ERROR", "WARNING", "WARN", "INFO", "DEBUG", "", "INVALID"} {
		logger := NewLogger(level)
		assert.NotNil(t, logger, "Failed for level: %s", level)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"ERROR", slog.LevelError},
		{"error", slog.LevelError},
		{"WARNING", slog.LevelWarn},
		{"Warn", slog.LevelWarn},
		{"INFO", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"  DEBUG  ", slog.LevelDebug},
		{"INVALID", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

// TestLoggerOutput_Logfmt verifies that the logger produces logfmt-style output.
func TestLoggerOutput_Logfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("INFO", &buf)

	logger.Info("configuration migrated", "schema", "LocalConfig", "from_version", 0, "to_version", 1)

	output := buf.String()
	assert.Contains(t, output, "time=")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "msg=\"configuration migrated\"")
	assert.Contains(t, output, "schema=LocalConfig")
	assert.Contains(t, output, "from_version=0")
	assert.Contains(t, output, "to_version=1")
	assert.GreaterOrEqual(t, strings.Count(output, "="), 6)

	assert.NotContains(t, output, "{")
	assert.NotContains(t, output, "}")
}

// TestLoggerFiltering verifies that log level filtering works.
func TestLoggerFiltering(t *testing.T) {
	testCases := []struct {
		loggerLevel string
		logLevel    slog.Level
		shouldLog   bool
	}{
		{"ERROR", slog.LevelError, true},
		{"ERROR", slog.LevelWarn, false},
		{"WARNING", slog.LevelWarn, true},
		{"WARNING", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, true},
		{"INFO", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, true},
	}

	for _, tc := range testCases {
		t.Run(tc.loggerLevel+"_logs_"+tc.logLevel.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tc.loggerLevel, &buf)

			logger.Log(context.Background(), tc.logLevel, "test message")

			if tc.shouldLog {
				assert.NotEmpty(t, buf.String(), "Expected log output for %s logger at %s level", tc.loggerLevel, tc.logLevel)
			} else {
				assert.Empty(t, buf.String(), "Expected no log output for %s logger at %s level", tc.loggerLevel, tc.logLevel)
			}
		})
	}
}

func TestDiscardAndOrDefault(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })

	assert.Same(t, slog.Default(), OrDefault(nil))
	logger := Discard()
	assert.Same(t, logger, OrDefault(logger))
}
