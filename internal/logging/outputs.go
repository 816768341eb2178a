package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConsoleOutput renders human readable logs through charmbracelet/log.
type ConsoleOutput struct {
	logger   *charmlog.Logger
	colorize bool
	mu       sync.Mutex
}

// NewConsoleOutput creates a console output on stderr
func NewConsoleOutput(colorize bool) *ConsoleOutput {
	return NewConsoleOutputWithWriter(os.Stderr, colorize)
}

// NewConsoleOutputWithWriter creates a console output with custom writer
func NewConsoleOutputWithWriter(writer io.Writer, colorize bool) *ConsoleOutput {
	logger := charmlog.NewWithOptions(writer, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           charmlog.DebugLevel,
	})
	logger.SetStyles(levelStyles())
	if !colorize {
		logger.SetColorProfile(termenv.Ascii)
	}

	return &ConsoleOutput{
		logger:   logger,
		colorize: colorize,
	}
}

// levelStyles spells out full level names instead of the four letter default.
func levelStyles() *charmlog.Styles {
	styles := charmlog.DefaultStyles()
	colors := map[charmlog.Level]string{
		charmlog.DebugLevel: "245",
		charmlog.InfoLevel:  "39",
		charmlog.WarnLevel:  "214",
		charmlog.ErrorLevel: "196",
		charmlog.FatalLevel: "170",
	}
	for level, color := range colors {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(strings.ToUpper(level.String())).
			Bold(true).
			Foreground(lipgloss.Color(color))
	}
	return styles
}

// Write outputs a log entry to console
func (c *ConsoleOutput) Write(entry *LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]interface{}, 0, len(keys)*2+2)
	for _, k := range keys {
		keyvals = append(keyvals, k, entry.Fields[k])
	}
	if entry.Caller != "" {
		keyvals = append(keyvals, "caller", entry.Caller)
	}

	c.logger.Log(toCharmLevel(entry.Level), entry.Message, keyvals...)
	return nil
}

func toCharmLevel(level LogLevel) charmlog.Level {
	switch level {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelInfo:
		return charmlog.InfoLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.FatalLevel
	}
}

// Close implements the LogOutput interface
func (c *ConsoleOutput) Close() error {
	return nil
}

// FileOutput appends JSON lines to a file rotated by lumberjack. Rotated
// files sit next to the live file with a timestamp before the extension.
type FileOutput struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	closed bool
}

// FileOutputConfig configures file output options
type FileOutputConfig struct {
	Filename string

	// MaxSizeMB is the size in megabytes that triggers rotation
	MaxSizeMB int

	// MaxBackups rotated files are kept; 0 keeps all of them
	MaxBackups int

	// MaxAgeDays removes rotated files older than this; 0 keeps them
	MaxAgeDays int

	// Compress gzips rotated files
	Compress bool
}

// NewFileOutput opens (or creates) the log file, creating parent directories
func NewFileOutput(config FileOutputConfig) (*FileOutput, error) {
	if err := os.MkdirAll(filepath.Dir(config.Filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	file.Close()

	return &FileOutput{
		writer: &lumberjack.Logger{
			Filename:   config.Filename,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAgeDays,
			Compress:   config.Compress,
		},
	}, nil
}

// Write appends entry as one JSON line. Each entry is a single write so a
// rotation never splits a line.
func (f *FileOutput) Write(entry *LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	data = append(data, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("log file %s is closed", f.writer.Filename)
	}
	if _, err := f.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

// Close closes the file
func (f *FileOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	if err := f.writer.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// JSONOutput writes structured logs as JSON
type JSONOutput struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONOutput creates a new JSON output
func NewJSONOutput(writer io.Writer) *JSONOutput {
	return &JSONOutput{
		writer: writer,
	}
}

// Write outputs a log entry as JSON
func (j *JSONOutput) Write(entry *LogEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	data = append(data, '\n')
	_, err = j.writer.Write(data)
	return err
}

// Close implements the LogOutput interface
func (j *JSONOutput) Close() error {
	return nil
}
