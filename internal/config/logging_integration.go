package config

import (
	"fmt"

	"github.com/common-creation/image-editor-mcp/internal/logging"
)

// SetupLogging initializes the logging system from the configuration
func (c *Config) SetupLogging() (*logging.Logger, error) {
	logger, err := logging.SetupLogging(c.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	logger.DebugWith("Logging system initialized", logging.Fields{
		"level":   c.Logging.Level,
		"format":  c.Logging.Format,
		"file":    c.Logging.File,
		"privacy": c.Logging.Privacy.Enabled,
	})

	return logger, nil
}

// ServerLogger returns the default logger tagged for server lifecycle messages
func (c *Config) ServerLogger() *logging.Logger {
	return logging.GetDefault().With(logging.Fields{
		"component": "server",
		"transport": c.Server.Transport,
	})
}
