package lib

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLogLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelWarn, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "stage", "polling")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "stage=polling")

	logger.SetLevel(LogLevelDebug)
	assert.True(t, logger.Enabled(LogLevelDebug))
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelInfo, &buf).With("run_id", "r-1")

	LogStageFailed(logger, "upload", "r-1", errors.New("boom"))
	LogStageComplete(logger, "upload", "r-1", 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "run_id=r-1")
	assert.Contains(t, out, "boom")
}

func TestLogRetry_StripsLineBreaks(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelWarn, &buf)

	LogRetry(logger, "task lookup\nforged=1", 1, 5, errors.New("HTTP 503"))

	out := buf.String()
	assert.Contains(t, out, "Retry attempt 2/5 for: task lookupforged=1")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}
