package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// LogLevel is a logging severity. Higher levels are more severe.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	// LogLevelNone disables all logging.
	LogLevelNone
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR", "NONE"}

func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(l))
}

// ParseLevel converts a configuration string such as "debug" or "warn" into a LogLevel.
// An empty string is info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none", "off", "disable":
		return LogLevelNone, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger is the printf-style logger accepted by every mindcanvas component.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(format string, v ...any) {}
func (l *NoOpLogger) Info(format string, v ...any)  {}
func (l *NoOpLogger) Warn(format string, v ...any)  {}
func (l *NoOpLogger) Error(format string, v ...any) {}

// Entry is one message kept by a Recorder.
type Entry struct {
	Level   LogLevel
	Message string
}

// Recorder keeps formatted messages in memory. Tests use it to assert that a
// recovered failure was reported.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Logger = (*Recorder)(nil)

func (r *Recorder) record(level LogLevel, format string, v []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(format, v...)})
}

func (r *Recorder) Debug(format string, v ...any) { r.record(LogLevelDebug, format, v) }
func (r *Recorder) Info(format string, v ...any)  { r.record(LogLevelInfo, format, v) }
func (r *Recorder) Warn(format string, v ...any)  { r.record(LogLevelWarn, format, v) }
func (r *Recorder) Error(format string, v ...any) { r.record(LogLevelError, format, v) }

// Entries returns the recorded messages at level or above.
func (r *Recorder) Entries(level LogLevel) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Level >= level {
			out = append(out, e)
		}
	}
	return out
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = newStderrLogger(LogLevelInfo)
)

func newStderrLogger(level LogLevel) *GologLogger {
	l := New(level)
	l.SetOutput(os.Stderr)
	return l
}

// SetDefaultLogger replaces the logger that components fall back to. nil installs a
// NoOpLogger.
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}

// GetDefaultLogger returns the fallback logger, golog on stderr at info unless replaced.
func GetDefaultLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}
