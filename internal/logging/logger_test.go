package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelDebug, NewConsoleOutputWithWriter(&buf, false))

	logger.Info("test message")

	logOutput := buf.String()
	if !strings.Contains(logOutput, "test message") {
		t.Errorf("Expected log to contain 'test message', got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "INFO") {
		t.Errorf("Expected log to contain 'INFO', got: %s", logOutput)
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelDebug, NewConsoleOutputWithWriter(&buf, false))

	logger.InfoWith("test message", Fields{
		"user_id": 123,
		"action":  "test",
	})

	logOutput := buf.String()
	if !strings.Contains(logOutput, "user_id=123") {
		t.Errorf("Expected log to contain field 'user_id=123', got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "action=test") {
		t.Errorf("Expected log to contain field 'action=test', got: %s", logOutput)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelWarn, NewConsoleOutputWithWriter(&buf, false))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	logOutput := buf.String()
	if strings.Contains(logOutput, "debug message") {
		t.Error("Debug message should be filtered out")
	}
	if strings.Contains(logOutput, "info message") {
		t.Error("Info message should be filtered out")
	}
	if !strings.Contains(logOutput, "warn message") {
		t.Error("Warn message should be present")
	}
	if !strings.Contains(logOutput, "caller=logger_test.go") {
		t.Errorf("Expected caller on warnings, got: %s", logOutput)
	}
}

func TestLogger_WithMethod(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelDebug, NewConsoleOutputWithWriter(&buf, false))

	child := logger.WithField("tool", "cropImage")
	child.Info("child message")
	logger.Info("parent message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "tool=cropImage") {
		t.Errorf("Expected child line to carry field, got: %s", lines[0])
	}
	if strings.Contains(lines[1], "tool=") {
		t.Errorf("Parent logger should not inherit child fields, got: %s", lines[1])
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelDebug, NewJSONOutput(&buf))

	logger.InfoWith("json message", Fields{"file": "cat.jpg"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["message"] != "json message" {
		t.Errorf("Expected message 'json message', got %v", entry["message"])
	}
	fields, ok := entry["fields"].(map[string]interface{})
	if !ok || fields["file"] != "cat.jpg" {
		t.Errorf("Expected fields.file 'cat.jpg', got %v", entry["fields"])
	}
}

func TestSanitizer(t *testing.T) {
	sanitizer := NewDefaultSanitizer()

	sanitized := sanitizer.Sanitize(Fields{
		"api_key":  "sk-1234567890",
		"password": "abc",
		"file":     "cat.jpg",
	})

	if sanitized["api_key"] != "sk-1***" {
		t.Errorf("Expected api_key masked to 'sk-1***', got %v", sanitized["api_key"])
	}
	if sanitized["password"] != "***" {
		t.Errorf("Expected short password fully masked, got %v", sanitized["password"])
	}
	if sanitized["file"] != "cat.jpg" {
		t.Errorf("Expected file to pass through, got %v", sanitized["file"])
	}
	if sanitizer.Sanitize(nil) != nil {
		t.Error("Expected nil fields to stay nil")
	}
}

func TestConfigureLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "server.log")

	config := DefaultConfig()
	config.Level = "debug"
	config.Format = "json"
	config.File = logFile

	logger, err := ConfigureLogger(config)
	if err != nil {
		t.Fatalf("Failed to configure logger: %v", err)
	}
	if logger.Level() != LevelDebug {
		t.Errorf("Expected level debug, got %s", logger.Level())
	}
	if len(logger.core.outputs) != 2 {
		t.Errorf("Expected stderr and file outputs, got %d", len(logger.core.outputs))
	}

	logger.InfoWith("to file", Fields{"token": "secret-value"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("Expected file to contain message, got: %s", data)
	}
	if strings.Contains(string(data), "secret-value") {
		t.Errorf("Expected token to be masked, got: %s", data)
	}
}

func TestConfigureLogger_Invalid(t *testing.T) {
	config := DefaultConfig()
	config.Level = "verbose"
	if _, err := ConfigureLogger(config); err == nil {
		t.Error("Expected error for unknown level")
	}

	config = DefaultConfig()
	config.Format = "xml"
	if _, err := ConfigureLogger(config); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestFileOutputRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "server.log")

	output, err := NewFileOutput(FileOutputConfig{Filename: logFile, MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("Failed to create file output: %v", err)
	}
	logger := NewWithOutputs(LevelDebug, output)

	// Each entry is about 256KiB, so this crosses the 1MB limit several times.
	payload := strings.Repeat("x", 256*1024)
	for i := 0; i < 20; i++ {
		logger.InfoWith("bulk", Fields{"payload": payload})
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	info, err := os.Stat(logFile)
	if err != nil {
		t.Fatalf("Expected live log file to exist: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Errorf("Expected live file under 1MB after rotation, got %d bytes", info.Size())
	}

	// Old backups are removed in the background.
	deadline := time.Now().Add(3 * time.Second)
	var backups []string
	for {
		backups, err = filepath.Glob(filepath.Join(dir, "server-*.log"))
		if err != nil {
			t.Fatalf("Failed to list backups: %v", err)
		}
		if (len(backups) >= 1 && len(backups) <= 2) || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(backups) < 1 || len(backups) > 2 {
		t.Errorf("Expected 1 or 2 rotated files, got %v", backups)
	}
}

func TestFileOutputRejectsWritesAfterClose(t *testing.T) {
	output, err := NewFileOutput(FileOutputConfig{Filename: filepath.Join(t.TempDir(), "logs", "server.log")})
	if err != nil {
		t.Fatalf("Failed to create file output: %v", err)
	}
	if err := output.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if err := output.Write(&LogEntry{Message: "late"}); err == nil {
		t.Error("Expected an error writing to a closed file output")
	}
}

func TestMultipleOutputs(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	logger := NewWithOutputs(LevelDebug, NewConsoleOutputWithWriter(&buf1, false))
	logger.AddOutput(NewJSONOutput(&buf2))

	logger.Info("multi message")

	if !strings.Contains(buf1.String(), "multi message") {
		t.Error("Expected console output to contain message")
	}
	if !strings.Contains(buf2.String(), "multi message") {
		t.Error("Expected JSON output to contain message")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"fatal", LevelFatal, false},
		{"invalid", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Errorf("Expected error for input %s", test.input)
			}
			if !test.hasError && err != nil {
				t.Errorf("Unexpected error for input %s: %v", test.input, err)
			}
			if level != test.expected {
				t.Errorf("Expected level %v, got %v", test.expected, level)
			}
		})
	}
}

func TestNopLogger(t *testing.T) {
	logger := Nop()
	logger.Error("dropped")
	if err := logger.Close(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoggerConcurrency(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelDebug, NewJSONOutput(&buf))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.InfoWith("concurrent message", Fields{"goroutine": id})
		}(i)
	}
	wg.Wait()

	count := 0
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Corrupted log line %q: %v", scanner.Text(), err)
		}
		count++
	}
	if count != 10 {
		t.Errorf("Expected 10 log lines, got %d", count)
	}
}

func TestSlogBridge(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelInfo, NewJSONOutput(&buf))
	slogger := logger.Slog().With("session_id", "abc")

	slogger.Info("session initialized")
	slogger.Error("session ended with error", "error", os.ErrClosed)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected info records to be demoted below the threshold, got %d lines", len(lines))
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry.Level != LevelWarn {
		t.Errorf("Expected slog errors to be logged as WARN, got %s", entry.Level)
	}
	if entry.Fields["session_id"] != "abc" {
		t.Errorf("Expected session_id from With, got %v", entry.Fields)
	}
	if entry.Fields["error"] != os.ErrClosed.Error() {
		t.Errorf("Expected error text, got %v", entry.Fields["error"])
	}
}

func TestChildLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutputs(LevelInfo, NewJSONOutput(&buf))
	child := logger.WithField("component", "editor")

	logger.SetLevel(LevelError)
	child.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected child to follow the parent's level, got: %s", buf.String())
	}

	child.Error("kept")
	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry.Level != LevelError {
		t.Errorf("Expected ERROR, got %s", entry.Level)
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("Expected level written by name, got: %s", buf.String())
	}
}
