// Package log is the project logger: a thin logrus wrapper that tags every entry with
// the source location of the caller.
package log

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	origLogger = logrus.New()
	// default logger we use
	defaultLogger = &logger{
		entry: logrus.NewEntry(origLogger),
		fmt:   "short",
	}
)

// Logger is the logging contract handed to library code.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	WithFields(map[string]interface{}) Logger
	With(key string, value interface{}) Logger
}

type Fields map[string]interface{}

type logger struct {
	entry *logrus.Entry
	fmt   string
}

func (l *logger) Debugf(msg string, args ...interface{}) {
	l.withSource().Debugf(msg, args...)
}

func (l *logger) Infof(msg string, args ...interface{}) {
	l.withSource().Infof(msg, args...)
}

func (l *logger) Warnf(msg string, args ...interface{}) {
	l.withSource().Warnf(msg, args...)
}

func (l *logger) Errorf(msg string, args ...interface{}) {
	l.withSource().Errorf(msg, args...)
}

func (l *logger) With(key string, value interface{}) Logger {
	return &logger{l.entry.WithField(key, value), l.fmt}
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	return &logger{l.entry.WithFields(logrus.Fields(fields)), l.fmt}
}

func (l *logger) withSource() *logrus.Entry {
	if defaultLogger.fmt == "none" {
		return l.entry
	}
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "<???>"
		line = 1
	} else if defaultLogger.fmt == "short" {
		file = file[strings.LastIndex(file, "/")+1:]
	}
	return l.entry.WithField("source", fmt.Sprintf("%s:%d", file, line))
}

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}

// Discard returns a logger that drops every entry; used by tests and library callers
// that bring no logger.
func Discard() Logger {
	l := logrus.New()
	l.Out = io.Discard
	return &logger{entry: logrus.NewEntry(l), fmt: "none"}
}

// sets the output format to 'json'|'text'|'nocolor'
func SetFormat(format string) {
	switch format {
	case "json":
		origLogger.Formatter = &logrus.JSONFormatter{}
	case "nocolor":
		origLogger.Formatter = &logrus.TextFormatter{DisableColors: true}
	default:
		origLogger.Formatter = &logrus.TextFormatter{}
	}
}

// set the source format output to either 'long'|'short'|'none'
func SetSourceFormat(format string) {
	switch format {
	case "long", "none":
		defaultLogger.fmt = format
	default:
		defaultLogger.fmt = "short"
	}
}

// set logging level, unknown levels fall back to info
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		origLogger.Level = logrus.InfoLevel
		return
	}
	origLogger.Level = lvl
}

// set log output
func SetOutput(out io.Writer) {
	origLogger.Out = out
}

func IsDebugEnabled() bool {
	return origLogger.IsLevelEnabled(logrus.DebugLevel)
}

func Debugf(msg string, args ...interface{}) {
	defaultLogger.withSource().Debugf(msg, args...)
}

func Infof(msg string, args ...interface{}) {
	defaultLogger.withSource().Infof(msg, args...)
}

func Warnf(msg string, args ...interface{}) {
	defaultLogger.withSource().Warnf(msg, args...)
}

func Errorf(msg string, args ...interface{}) {
	defaultLogger.withSource().Errorf(msg, args...)
}

func With(key string, value interface{}) Logger {
	return defaultLogger.With(key, value)
}

func WithFields(fields map[string]interface{}) Logger {
	return defaultLogger.WithFields(fields)
}
