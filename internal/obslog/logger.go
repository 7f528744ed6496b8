// Package obslog provides the standardized structured-logging wrapper shared
// by every package in this module. It exists so that crypto, keys, totp,
// recovery, and mfa all log operation entry/exit and outcome the same way,
// without any package ever formatting a secret into a log line directly.
package obslog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger standardizes package/function/operation fields on top of logrus.
type Logger struct {
	function string
	fields   logrus.Fields
}

// New creates a logger scoped to pkg (the Go package name) and function
// (the operation being logged).
func New(pkg, function string) *Logger {
	return &Logger{
		function: function,
		fields: logrus.Fields{
			"package":  pkg,
			"function": function,
		},
	}
}

// WithField adds a custom field to the logger.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	l.fields[key] = value
	return l
}

// WithFields adds multiple custom fields to the logger.
func (l *Logger) WithFields(fields logrus.Fields) *Logger {
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

// WithError adds error information to the logger.
func (l *Logger) WithError(err error, operation string) *Logger {
	l.fields["error"] = err.Error()
	l.fields["operation"] = operation
	return l
}

// Entry logs function entry.
func (l *Logger) Entry(message string) {
	logrus.WithFields(l.fields).Debug(fmt.Sprintf("entry: %s", message))
}

// Exit logs function exit.
func (l *Logger) Exit() {
	logrus.WithFields(l.fields).Debug(fmt.Sprintf("exit: %s", l.function))
}

// Debug logs a debug message.
func (l *Logger) Debug(message string) { logrus.WithFields(l.fields).Debug(message) }

// Info logs an info message.
func (l *Logger) Info(message string) { logrus.WithFields(l.fields).Info(message) }

// Warn logs a warning message.
func (l *Logger) Warn(message string) { logrus.WithFields(l.fields).Warn(message) }

// Error logs an error message.
func (l *Logger) Error(message string) { logrus.WithFields(l.fields).Error(message) }

// SecretPreview returns logging fields that describe sensitive data by size
// and an 8-byte hex preview only — the full value is never logged.
func SecretPreview(name string, data []byte) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		n := 8
		if len(data) < n {
			n = len(data)
		}
		preview = fmt.Sprintf("%x", data[:n])
		if len(data) > n {
			preview += "..."
		}
	}

	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}
