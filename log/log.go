// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogLevel orders verbosity from errors only up to trace
type LogLevel int

const (
	LevelError LogLevel = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = map[string]LogLevel{
	"error": LevelError,
	"warn":  LevelWarn,
	"info":  LevelInfo,
	"debug": LevelDebug,
	"trace": LevelTrace,
}

// ParseLogLevel parses a lowercase level name
func ParseLogLevel(s string) (LogLevel, error) {
	level, ok := levelNames[s]
	if !ok {
		return 0, fmt.Errorf("invalid log level %q (expected error, warn, info, debug or trace)", s)
	}
	return level, nil
}

func (l LogLevel) String() string {
	for name, level := range levelNames {
		if level == l {
			return name
		}
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelDebug:
		return logrus.DebugLevel
	case LevelTrace:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

var backend = newBackend()

var enabled = true

func newBackend() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetLogLevel sets the verbosity of the default logger
func SetLogLevel(level LogLevel) {
	backend.SetLevel(level.logrusLevel())
}

// SetOutput redirects the default logger
func SetOutput(w io.Writer) {
	backend.SetOutput(w)
}

// SetVerbose switches the default logger to trace level, or back to info
func SetVerbose(v bool) {
	if v {
		SetLogLevel(LevelTrace)
		return
	}
	SetLogLevel(LevelInfo)
}

// EnabledLogging turns the default logger on or off
func EnabledLogging(v bool) {
	enabled = v
}

type Logger struct {
	Tracef    func(format string, args ...interface{})
	Trace     func(format string)
	Infof     func(format string, args ...interface{})
	Debugf    func(format string, args ...interface{})
	Warnf     func(format string, args ...interface{}) error
	Errorf    func(format string, args ...interface{}) error
	TraceFunc func(func() string)
}

var logger = defaultLogger()

func defaultLogger() Logger {
	return Logger{
		Tracef:    defaultTracef,
		Trace:     defaultTrace,
		Infof:     defaultInfof,
		Debugf:    defaultDebugf,
		Warnf:     defaultWarnf,
		Errorf:    defaultErrorf,
		TraceFunc: defaultTraceFunc,
	}
}

// SetLogger replaces the logging functions, typically to route them into a
// host application's logger. Nil functions are silenced.
func SetLogger(l Logger) {
	logger = l
}

// ResetLogger restores the logrus backed default logger
func ResetLogger() {
	logger = defaultLogger()
}

func Tracef(format string, args ...interface{}) {
	if logger.Tracef != nil {
		logger.Tracef(format, args...)
	}
}

func Trace(format string) {
	if logger.Trace != nil {
		logger.Trace(format)
	}
}

func Infof(format string, args ...interface{}) {
	if logger.Infof != nil {
		logger.Infof(format, args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if logger.Debugf != nil {
		logger.Debugf(format, args...)
	}
}

func Warnf(format string, args ...interface{}) error {
	if logger.Warnf != nil {
		return logger.Warnf(format, args...)
	}
	return nil
}

func Errorf(format string, args ...interface{}) error {
	if logger.Errorf != nil {
		return logger.Errorf(format, args...)
	}
	return nil
}

func TraceFunc(logFunc func() string) {
	if logger.TraceFunc != nil {
		logger.TraceFunc(logFunc)
	}
}

var (
	defaultTracef = func(format string, args ...interface{}) {
		if enabled {
			backend.Tracef(format, args...)
		}
	}

	defaultTrace = func(format string) {
		if enabled {
			backend.Trace(format)
		}
	}

	defaultInfof = func(format string, args ...interface{}) {
		if enabled {
			backend.Infof(format, args...)
		}
	}

	defaultDebugf = func(format string, args ...interface{}) {
		if enabled {
			backend.Debugf(format, args...)
		}
	}

	defaultErrorf = func(format string, args ...interface{}) error {
		if enabled {
			backend.Errorf(format, args...)
		}
		return nil
	}

	defaultWarnf = func(format string, args ...interface{}) error {
		if enabled {
			backend.Warnf(format, args...)
		}
		return nil
	}

	defaultTraceFunc = func(logFunc func() string) {
		if enabled && backend.IsLevelEnabled(logrus.TraceLevel) {
			backend.Trace(logFunc())
		}
	}
)
