// Package rag implements the ingestion and retrieval mechanics behind the
// ragdrive public API: chunking, parsing, embedding providers, vector index
// backends, and the indexed-set ledger.
package rag

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// LogLevel represents the severity level of a log message.
// Higher values indicate more verbose logging.
type LogLevel int

const (
	// LogLevelOff disables all logging
	LogLevelOff LogLevel = iota
	// LogLevelError enables only error messages
	LogLevelError
	// LogLevelWarn enables error and warning messages
	LogLevelWarn
	// LogLevelInfo enables error, warning, and info messages
	LogLevelInfo
	// LogLevelDebug enables all messages including debug
	LogLevelDebug
)

// Logger is the logging interface used throughout the pipeline. It supports
// multiple severity levels and structured key-value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	SetLevel(level LogLevel)
}

// DefaultLogger writes to os.Stderr through the standard library's log
// package: timestamp, level, message, key-value pairs.
type DefaultLogger struct {
	logger *log.Logger
	level  LogLevel
}

// NewLogger creates a new DefaultLogger with the given level.
func NewLogger(level LogLevel) Logger {
	return &DefaultLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags),
		level:  level,
	}
}

// SetLevel updates the logging level. Messages below it are dropped.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *DefaultLogger) log(level LogLevel, msg string, keysAndValues ...interface{}) {
	if level <= l.level {
		l.logger.Printf("%s: %s %v", level, msg, keysAndValues)
	}
}

func (l *DefaultLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelDebug, msg, keysAndValues...)
}

func (l *DefaultLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelInfo, msg, keysAndValues...)
}

func (l *DefaultLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelWarn, msg, keysAndValues...)
}

func (l *DefaultLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(LogLevelError, msg, keysAndValues...)
}

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	return [...]string{"OFF", "ERROR", "WARN", "INFO", "DEBUG"}[l]
}

// UnmarshalText lets LogLevel be configured from string values in
// configuration files or environment variables.
func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "OFF":
		*l = LogLevelOff
	case "ERROR":
		*l = LogLevelError
	case "WARN":
		*l = LogLevelWarn
	case "INFO":
		*l = LogLevelInfo
	case "DEBUG":
		*l = LogLevelDebug
	default:
		return fmt.Errorf("invalid log level: %s", string(text))
	}
	return nil
}

// ParseLogLevel converts a level name such as "debug" into a LogLevel.
func ParseLogLevel(name string) (LogLevel, error) {
	var level LogLevel
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return LogLevelInfo, err
	}
	return level, nil
}

// GlobalLogger is the package-level logger used when no logger is injected.
var GlobalLogger Logger

func init() {
	GlobalLogger = NewLogger(LogLevelInfo)
}

// SetGlobalLogLevel sets the log level for the global logger instance.
func SetGlobalLogLevel(level LogLevel) {
	GlobalLogger.SetLevel(level)
}
