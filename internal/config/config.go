package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/common-creation/image-editor-mcp/internal/logging"
)

const (
	// TransportStdio serves MCP over stdin/stdout
	TransportStdio = "stdio"
	// TransportHTTP serves MCP over streamable HTTP
	TransportHTTP = "http"
)

// Config represents the complete configuration for the image editor server
type Config struct {
	// MCP server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Image folder configuration
	Images ImagesConfig `yaml:"images" json:"images"`

	// Pixel engine configuration
	Engine EngineConfig `yaml:"engine" json:"engine"`

	// Logging configuration
	Logging logging.LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig contains MCP server settings
type ServerConfig struct {
	// Name announced during the MCP handshake
	Name string `yaml:"name" json:"name"`

	// Version announced during the MCP handshake
	Version string `yaml:"version" json:"version"`

	// Transport is "stdio" or "http"
	Transport string `yaml:"transport" json:"transport"`

	// Listen address for the http transport
	Addr string `yaml:"addr" json:"addr"`
}

// ImagesConfig contains the image folder settings
type ImagesConfig struct {
	// Root is the only directory tools may read from or write to
	Root string `yaml:"root" json:"root"`
}

// EngineConfig contains pixel engine settings
type EngineConfig struct {
	// Encoder quality for brightness and crop output (1-100)
	DefaultQuality int `yaml:"default_quality" json:"default_quality"`

	// Sources larger than this are refused
	MaxSourceBytes int64 `yaml:"max_source_bytes" json:"max_source_bytes"`

	// Apply EXIF orientation when decoding
	AutoOrient bool `yaml:"auto_orient" json:"auto_orient"`
}

// NewDefaultConfig creates a new configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "image-editor-mcp",
			Version:   "1.0.0",
			Transport: TransportStdio,
			Addr:      "127.0.0.1:8080",
		},
		Engine: EngineConfig{
			DefaultQuality: 90,
			MaxSourceBytes: 100 * 1024 * 1024, // 100MiB
			AutoOrient:     true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate validates the configuration. The image root is checked when the
// sandbox is built, since it may still arrive from the command line.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server configuration error: %w", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine configuration error: %w", err)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging configuration error: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging configuration error: invalid format: %s (must be 'text' or 'json')", c.Logging.Format)
	}

	return nil
}

// Validate validates the server configuration
func (s *ServerConfig) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}

	switch s.Transport {
	case TransportStdio:
	case TransportHTTP:
		if s.Addr == "" {
			return errors.New("addr is required for the http transport")
		}
	default:
		return fmt.Errorf("invalid transport: %s (must be 'stdio' or 'http')", s.Transport)
	}

	return nil
}

// Validate validates the engine configuration
func (e *EngineConfig) Validate() error {
	if e.DefaultQuality < 1 || e.DefaultQuality > 100 {
		return fmt.Errorf("default_quality must be between 1 and 100, got %d", e.DefaultQuality)
	}

	if e.MaxSourceBytes <= 0 {
		return fmt.Errorf("max_source_bytes must be positive, got %d", e.MaxSourceBytes)
	}

	return nil
}
