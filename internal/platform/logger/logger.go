// Package logger provides structured logging for the simulation server.
// Every state transition the engine performs should be traceable through it.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps the underlying structured logger so callers stay decoupled
// from the logging library.
type Logger struct {
	log *logrus.Logger
}

// NewLogger creates a new logger instance writing to stdout.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{log: l}
}

// SetLevel adjusts verbosity ("debug", "info", "warn", "error").
func (l *Logger) SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		l.log.Warnf("unknown log level %q, keeping %s", level, l.log.GetLevel())
		return
	}
	l.log.SetLevel(parsed)
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

// Event logs a specific simulation event with its game context.
func (l *Logger) Event(eventType string, gameID int, details string) {
	l.log.WithFields(logrus.Fields{
		"event": eventType,
		"game":  gameID,
	}).Info(details)
}
