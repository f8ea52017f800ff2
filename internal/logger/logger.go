package logger

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Logger provides leveled logging for the pipeline stages
type Logger struct {
	verbose atomic.Bool
	info    *log.Logger
	warn    *log.Logger
	debug   *log.Logger
	error   *log.Logger
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(false, os.Stderr))
}

// New creates a new logger writing to output
func New(verbose bool, output io.Writer) *Logger {
	flags := log.Ldate | log.Ltime
	l := &Logger{
		info:  log.New(output, "[INFO]  ", flags),
		warn:  log.New(output, "[WARN]  ", flags),
		debug: log.New(output, "[DEBUG] ", flags),
		error: log.New(output, "[ERROR] ", flags),
	}
	l.verbose.Store(verbose)
	return l
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}

// Default returns the default logger instance
func Default() *Logger {
	return defaultLogger.Load()
}

// SetVerbose enables or disables debug output
func (l *Logger) SetVerbose(verbose bool) {
	l.verbose.Store(verbose)
}

// IsVerbose returns whether debug output is enabled
func (l *Logger) IsVerbose() bool {
	return l.verbose.Load()
}

// Info logs an informational message (always shown)
func (l *Logger) Info(format string, args ...interface{}) {
	l.info.Printf(format, args...)
}

// Warn logs a recoverable problem, such as a skipped download (always shown)
func (l *Logger) Warn(format string, args ...interface{}) {
	l.warn.Printf(format, args...)
}

// Debug logs a debug message (only shown if verbose is enabled)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.IsVerbose() {
		l.debug.Printf(format, args...)
	}
}

// Error logs an error message (always shown)
func (l *Logger) Error(format string, args ...interface{}) {
	l.error.Printf(format, args...)
}

// Package-level functions that use the default logger

// SetVerbose enables or disables debug output on the default logger
func SetVerbose(verbose bool) {
	Default().SetVerbose(verbose)
}

// IsVerbose returns whether debug output is enabled on the default logger
func IsVerbose() bool {
	return Default().IsVerbose()
}

// Info logs an informational message using the default logger
func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

// Warn logs a warning using the default logger
func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

// Debug logs a debug message using the default logger (only shown if verbose is enabled)
func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}
