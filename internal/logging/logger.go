// Package logging provides the levelled, structured logger used across the
// server. Outputs never write to stdout, which carries the MCP stream.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of log messages
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String returns the upper-case level name
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText writes the level by name so JSON logs stay readable
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts any name ParseLevel understands
func (l *LogLevel) UnmarshalText(text []byte) error {
	level, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// Fields represents structured data for logging
type Fields map[string]interface{}

// merge returns a new map holding base overlaid with extra
func merge(base, extra Fields) Fields {
	out := make(Fields, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// LogEntry is one record handed to every output
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Fields    Fields    `json:"fields,omitempty"`
	Caller    string    `json:"caller,omitempty"`
}

// LogOutput receives log entries
type LogOutput interface {
	Write(entry *LogEntry) error
	Close() error
}

// Sanitizer masks sensitive values before entries reach any output
type Sanitizer interface {
	Sanitize(Fields) Fields
}

// DefaultSanitizer masks values whose key contains one of its sensitive keys
type DefaultSanitizer struct {
	sensitiveKeys []string
}

// NewDefaultSanitizer creates a sanitizer with common sensitive keys
func NewDefaultSanitizer() *DefaultSanitizer {
	return &DefaultSanitizer{
		sensitiveKeys: []string{
			"api_key", "apikey", "token", "password", "secret",
			"authorization", "auth", "bearer",
		},
	}
}

func (s *DefaultSanitizer) sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, k := range s.sensitiveKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

// Sanitize keeps the first four characters of long sensitive strings and
// masks everything else.
func (s *DefaultSanitizer) Sanitize(fields Fields) Fields {
	if fields == nil {
		return nil
	}

	out := make(Fields, len(fields))
	for k, v := range fields {
		if !s.sensitive(k) {
			out[k] = v
			continue
		}
		if str, ok := v.(string); ok && len(str) > 4 {
			out[k] = str[:4] + "***"
		} else {
			out[k] = "***"
		}
	}
	return out
}

// core is shared by a logger and every child derived with With, so level
// and output changes apply to all of them.
type core struct {
	mu        sync.RWMutex
	level     LogLevel
	outputs   []LogOutput
	sanitizer Sanitizer
}

// Logger writes levelled entries with structured fields
type Logger struct {
	core   *core
	fields Fields
}

// NewLogger creates a new logger writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewWithOutputs(level, NewConsoleOutput(true))
}

// NewWithOutputs creates a logger with the given outputs and no default console
func NewWithOutputs(level LogLevel, outputs ...LogOutput) *Logger {
	return &Logger{
		core: &core{
			level:     level,
			outputs:   outputs,
			sanitizer: NewDefaultSanitizer(),
		},
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return NewWithOutputs(LevelFatal + 1)
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.level = level
}

// Level returns the minimum log level
func (l *Logger) Level() LogLevel {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()
	return l.core.level
}

// AddOutput adds a log output
func (l *Logger) AddOutput(output LogOutput) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.outputs = append(l.core.outputs, output)
}

// SetSanitizer replaces the field sanitizer; nil disables masking
func (l *Logger) SetSanitizer(sanitizer Sanitizer) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.sanitizer = sanitizer
}

// With returns a child logger that adds fields to every entry
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{core: l.core, fields: merge(l.fields, fields)}
}

// WithField returns a child logger with a single additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.With(Fields{key: value})
}

// callerSkip skips log and the public level method.
const callerSkip = 2

func (l *Logger) log(level LogLevel, message string, fields Fields) {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()

	if level < l.core.level {
		return
	}

	entry := &LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Fields:    merge(l.fields, fields),
	}
	if l.core.sanitizer != nil {
		entry.Fields = l.core.sanitizer.Sanitize(entry.Fields)
	}
	if level >= LevelWarn {
		if _, file, line, ok := runtime.Caller(callerSkip); ok {
			entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}

	for _, output := range l.core.outputs {
		if err := output.Write(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Logger output error: %v\n", err)
		}
	}
}

// Debug logs a debug message
func (l *Logger) Debug(message string) { l.log(LevelDebug, message, nil) }

// DebugWith logs a debug message with fields
func (l *Logger) DebugWith(message string, fields Fields) { l.log(LevelDebug, message, fields) }

// Info logs an info message
func (l *Logger) Info(message string) { l.log(LevelInfo, message, nil) }

// InfoWith logs an info message with fields
func (l *Logger) InfoWith(message string, fields Fields) { l.log(LevelInfo, message, fields) }

// Warn logs a warning message
func (l *Logger) Warn(message string) { l.log(LevelWarn, message, nil) }

// WarnWith logs a warning message with fields
func (l *Logger) WarnWith(message string, fields Fields) { l.log(LevelWarn, message, fields) }

// Error logs an error message
func (l *Logger) Error(message string) { l.log(LevelError, message, nil) }

// ErrorWith logs an error message with fields
func (l *Logger) ErrorWith(message string, fields Fields) { l.log(LevelError, message, fields) }

// Close closes all outputs
func (l *Logger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	var errs []string
	for _, output := range l.core.outputs {
		if err := output.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing outputs: %s", strings.Join(errs, ", "))
	}
	return nil
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// GetDefault returns the process-wide logger, creating a stderr logger at
// info level on first use.
func GetDefault() *Logger {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	if logger != nil {
		return logger
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(LevelInfo)
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
