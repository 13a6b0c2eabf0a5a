package log

import (
	"io"

	"github.com/kataras/golog"
)

// GologLogger is a Logger on top of kataras/golog.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
}

var _ Logger = (*GologLogger)(nil)

// New creates a GologLogger with a private golog instance at level.
func New(level LogLevel) *GologLogger {
	l := NewGologLogger(golog.New())
	l.SetLevel(level)
	return l
}

// NewGologLogger wraps an existing golog.Logger. The level starts at info.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger, level: LogLevelInfo}
}

// Named returns a logger whose lines carry "name: " after the parent's prefix. It
// shares the parent's output and starts at the parent's level.
func (l *GologLogger) Named(name string) *GologLogger {
	return &GologLogger{logger: l.logger.Clone().SetChildPrefix(name), level: l.level}
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LogLevelDebug {
		l.logger.Debugf(format, v...)
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LogLevelInfo {
		l.logger.Infof(format, v...)
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LogLevelWarn {
		l.logger.Warnf(format, v...)
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LogLevelError {
		l.logger.Errorf(format, v...)
	}
}

// SetOutput redirects the underlying golog logger.
func (l *GologLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

var gologLevels = map[LogLevel]string{
	LogLevelDebug: "debug",
	LogLevelInfo:  "info",
	LogLevelWarn:  "warn",
	LogLevelError: "error",
	LogLevelNone:  "disable",
}

// SetLevel changes the level of this logger and of its golog instance.
func (l *GologLogger) SetLevel(level LogLevel) {
	l.level = level
	name, ok := gologLevels[level]
	if !ok {
		name = "info"
	}
	l.logger.SetLevel(name)
}

// GetLevel returns the current level.
func (l *GologLogger) GetLevel() LogLevel {
	return l.level
}
