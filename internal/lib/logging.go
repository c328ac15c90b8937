package lib

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel defines the severity of log messages
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Logger provides structured logging for the application
type Logger struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

// NewLogger creates a new logger instance writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a logger that writes to a specific writer
// Useful for testing and for keeping logs off a progress bar's line
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level.slogLevel())
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})
	return &Logger{
		level:  lv,
		logger: slog.New(handler),
	}
}

// DefaultLogger returns a logger with INFO level
var DefaultLogger = NewLogger(LogLevelInfo)

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...interface{}) {
	l.log(slog.LevelDebug, message, fields...)
}

// Info logs an informational message
func (l *Logger) Info(message string, fields ...interface{}) {
	l.log(slog.LevelInfo, message, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...interface{}) {
	l.log(slog.LevelWarn, message, fields...)
}

// Error logs an error message
func (l *Logger) Error(message string, fields ...interface{}) {
	l.log(slog.LevelError, message, fields...)
}

// With returns a logger that always includes the given fields
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{
		level:  l.level,
		logger: l.logger.With(fields...),
	}
}

func (l *Logger) log(level slog.Level, message string, fields ...interface{}) {
	if l == nil {
		return
	}
	l.logger.Log(context.Background(), level, message, fields...)
}

// LogRetry logs retry attempts
func LogRetry(logger *Logger, operation string, attempt int, maxAttempts int, err error) {
	// Remove line breaks from operation to prevent log spoofing
	safeOperation := strings.ReplaceAll(operation, "\n", "")
	safeOperation = strings.ReplaceAll(safeOperation, "\r", "")
	logger.Warn(
		fmt.Sprintf("Retry attempt %d/%d for: %s", attempt+1, maxAttempts, safeOperation),
		"error", err,
	)
}

// LogStageStart logs the start of a workflow stage
func LogStageStart(logger *Logger, stage string, runID string) {
	logger.Info(
		"Stage started",
		"stage", stage,
		"run_id", runID,
	)
}

// LogStageComplete logs the completion of a workflow stage
func LogStageComplete(logger *Logger, stage string, runID string, duration time.Duration) {
	logger.Info(
		"Stage completed",
		"stage", stage,
		"run_id", runID,
		"duration", duration,
	)
}

// LogStageFailed logs a failed workflow stage
func LogStageFailed(logger *Logger, stage string, runID string, err error) {
	logger.Error(
		"Stage failed",
		"stage", stage,
		"run_id", runID,
		"kind", KindOf(err),
		"error", err,
	)
}

// LogRunCreated logs the start of a workflow run
func LogRunCreated(logger *Logger, runID string, fileName string, size int64) {
	logger.Info(
		"Run created",
		"run_id", runID,
		"file", fileName,
		"size_bytes", size,
	)
}

// LogRunCompleted logs a successful workflow run
func LogRunCompleted(logger *Logger, runID string, analysisID string, duration time.Duration) {
	logger.Info(
		"Run completed",
		"run_id", runID,
		"analysis_id", analysisID,
		"duration", duration,
	)
}

// LogServiceCall logs HTTP service calls
func LogServiceCall(logger *Logger, service string, endpoint string, method string) {
	logger.Debug(
		"Service call",
		"service", service,
		"endpoint", endpoint,
		"method", method,
	)
}

// LogServiceResponse logs HTTP service responses
func LogServiceResponse(logger *Logger, service string, statusCode int, duration time.Duration) {
	if statusCode >= 400 {
		logger.Warn(
			"Service response",
			"service", service,
			"status", statusCode,
			"duration", duration,
		)
	} else {
		logger.Debug(
			"Service response",
			"service", service,
			"status", statusCode,
			"duration", duration,
		)
	}
}

// SetLevel changes the log level
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level.slogLevel())
}

// Enabled reports whether messages at the given level are emitted
func (l *Logger) Enabled(level LogLevel) bool {
	return l.logger.Enabled(context.Background(), level.slogLevel())
}

func (level LogLevel) slogLevel() slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel converts a string to LogLevel
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}
