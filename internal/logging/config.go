package logging

import (
	"fmt"
	"os"
	"strings"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string         `yaml:"level" json:"level"`
	Format   string         `yaml:"format" json:"format"` // text or json
	Color    bool           `yaml:"color" json:"color"`
	File     string         `yaml:"file,omitempty" json:"file,omitempty"`
	Rotation RotationConfig `yaml:"rotation" json:"rotation"`
	Privacy  PrivacyConfig  `yaml:"privacy" json:"privacy"`
}

// PrivacyConfig controls masking of sensitive fields
type PrivacyConfig struct {
	Enabled       bool     `yaml:"enabled" json:"enabled"`
	SensitiveKeys []string `yaml:"sensitive_keys" json:"sensitive_keys"`
}

// RotationConfig controls log file rotation
type RotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a default logging configuration
func DefaultConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "text",
		Color:  true,
		Privacy: PrivacyConfig{
			Enabled:       true,
			SensitiveKeys: []string{"api_key", "apikey", "token", "password", "secret", "authorization"},
		},
		Rotation: RotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// ConfigureLogger creates and configures a logger from config.
// Console and JSON output go to stderr; File adds a rotated JSON lines file.
func ConfigureLogger(config LoggingConfig) (*Logger, error) {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	var console LogOutput
	switch strings.ToLower(config.Format) {
	case "", "text":
		console = NewConsoleOutput(config.Color)
	case "json":
		console = NewJSONOutput(os.Stderr)
	default:
		return nil, fmt.Errorf("unknown log format: %s", config.Format)
	}
	logger := NewWithOutputs(level, console)

	if config.File != "" {
		file, err := NewFileOutput(FileOutputConfig{
			Filename:   config.File,
			MaxSizeMB:  config.Rotation.MaxSizeMB,
			MaxBackups: config.Rotation.MaxBackups,
			MaxAgeDays: config.Rotation.MaxAgeDays,
			Compress:   config.Rotation.Compress,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create file output: %w", err)
		}
		logger.AddOutput(file)
	}

	if config.Privacy.Enabled {
		if len(config.Privacy.SensitiveKeys) > 0 {
			logger.SetSanitizer(&DefaultSanitizer{sensitiveKeys: config.Privacy.SensitiveKeys})
		}
	} else {
		logger.SetSanitizer(nil)
	}

	return logger, nil
}

// ParseLevel parses a string log level
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// SetupLogging configures the global logger
func SetupLogging(config LoggingConfig) (*Logger, error) {
	logger, err := ConfigureLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}

	SetDefault(logger)
	return logger, nil
}
