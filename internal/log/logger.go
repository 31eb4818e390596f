// Package log provides structured logging for the tidyd application, backed
// by logrus. A package-level logger serves the common case; Configure adjusts
// it, and NewLogger builds independent instances for tests.
package log

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"tidyd/internal/errors"
)

// Field is a single key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger wraps a logrus logger with the application's conventions.
type Logger struct {
	l    *logrus.Logger
	file *os.File
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput directs log output to w.
func WithOutput(w io.Writer) Option {
	return func(lg *Logger) {
		lg.l.SetOutput(w)
	}
}

// WithJSON switches the logger to JSON-formatted records.
func WithJSON() Option {
	return func(lg *Logger) {
		lg.l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}
}

// WithFile tees log output to the given file in addition to stdout. An
// unopenable path keeps the current output and logs a warning instead of
// failing; logging must never take the process down.
func WithFile(path string) Option {
	return func(lg *Logger) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			lg.l.WithFields(logrus.Fields{"path": path, "error": err}).
				Warn("could not open log file, keeping current output")
			return
		}
		lg.file = f
		lg.l.SetOutput(io.MultiWriter(os.Stdout, f))
	}
}

var logger = NewLogger()

// NewLogger creates a Logger writing text records to stdout at info level.
func NewLogger(opts ...Option) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lg := &Logger{l: l}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Configure applies options to the package-level logger.
func Configure(opts ...Option) {
	for _, opt := range opts {
		opt(logger)
	}
}

// SetDebug toggles debug-level logging on the package-level logger.
func SetDebug(debug bool) {
	if debug {
		logger.l.SetLevel(logrus.DebugLevel)
	} else {
		logger.l.SetLevel(logrus.InfoLevel)
	}
}

// SetLevel sets the package-level logger's verbosity from a level name
// ("debug", "info", "warning", "error").
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "unknown log level %q", level)
	}
	logger.l.SetLevel(lvl)
	return nil
}

// ValidLevel reports whether level names a known logging level.
func ValidLevel(level string) bool {
	_, err := logrus.ParseLevel(level)
	return err == nil
}

// SetOutput redirects the package-level logger; tests use it to silence or
// capture output.
func SetOutput(w io.Writer) {
	logger.l.SetOutput(w)
}

// With returns an entry carrying the given fields.
func (lg *Logger) With(fields ...Field) *logrus.Entry {
	entry := logrus.NewEntry(lg.l)
	for _, f := range fields {
		entry = entry.WithField(f.Key, f.Value)
	}
	return entry
}

// Info logs at info level.
func (lg *Logger) Info(args ...interface{}) { lg.l.Info(args...) }

// Infof logs a formatted message at info level.
func (lg *Logger) Infof(format string, args ...interface{}) { lg.l.Infof(format, args...) }

// Debug logs at debug level.
func (lg *Logger) Debug(args ...interface{}) { lg.l.Debug(args...) }

// Debugf logs a formatted message at debug level.
func (lg *Logger) Debugf(format string, args ...interface{}) { lg.l.Debugf(format, args...) }

// Warn logs at warning level.
func (lg *Logger) Warn(args ...interface{}) { lg.l.Warn(args...) }

// Warnf logs a formatted message at warning level.
func (lg *Logger) Warnf(format string, args ...interface{}) { lg.l.Warnf(format, args...) }

// Error logs at error level.
func (lg *Logger) Error(args ...interface{}) { lg.l.Error(args...) }

// Errorf logs a formatted message at error level.
func (lg *Logger) Errorf(format string, args ...interface{}) { lg.l.Errorf(format, args...) }

// Package-level logging helpers delegating to the shared logger.

// Info logs at info level.
func Info(args ...interface{}) { logger.Info(args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) { logger.Infof(format, args...) }

// Debug logs at debug level.
func Debug(args ...interface{}) { logger.Debug(args...) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }

// Warn logs at warning level.
func Warn(args ...interface{}) { logger.Warn(args...) }

// Warnf logs a formatted message at warning level.
func Warnf(format string, args ...interface{}) { logger.Warnf(format, args...) }

// Error logs at error level.
func Error(args ...interface{}) { logger.Error(args...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

// LogWithFields returns an entry on the shared logger carrying the fields.
func LogWithFields(fields ...Field) *logrus.Entry {
	return logger.With(fields...)
}

// LogWithError returns an entry annotated with err and, for the application's
// typed errors, their kind and context fields. The outermost error type wins
// when errors are nested.
func LogWithError(err error) *logrus.Entry {
	entry := logger.With(F("error", err))
	switch e := err.(type) {
	case *errors.FileError:
		entry = entry.WithField("error_kind", int(e.Kind()))
		if e.Path() != "" {
			entry = entry.WithField("path", e.Path())
		}
	case *errors.ConfigError:
		entry = entry.WithField("error_kind", int(e.Kind()))
		if e.Param() != "" {
			entry = entry.WithField("param", e.Param())
		}
	case *errors.RuleError:
		entry = entry.WithField("error_kind", int(e.Kind()))
		if e.Pattern() != "" {
			entry = entry.WithField("pattern", e.Pattern())
		}
	case *errors.ApplicationError:
		entry = entry.WithField("error_kind", int(e.Kind()))
	}
	return entry
}

// LogError logs err at error level with msg, carrying the typed-error fields.
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}
