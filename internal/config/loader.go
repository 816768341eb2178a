package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.example.yaml
var embeddedConfigSample string

// EnvPrefix prefixes every environment override
const EnvPrefix = "IMAGE_EDITOR"

// Loader handles configuration loading and saving
type Loader struct {
	// Config file paths in priority order
	searchPaths []string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: getDefaultSearchPaths(),
	}
}

// Load loads configuration from file and environment variables.
// A missing config file is not an error; defaults are used instead.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	cfg := NewDefaultConfig()

	if configPath := l.find(explicitPath); configPath != "" {
		if err := l.loadFromFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	}

	if err := applyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Save writes cfg as YAML to path. An existing file is only replaced when
// force is set.
func (l *Loader) Save(path string, cfg *Config, force bool) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeConfigFile(path, data, force)
}

// GetConfigPath returns the file Load would read for explicitPath, or the
// per-user location when no config file exists yet.
func (l *Loader) GetConfigPath(explicitPath string) string {
	if path := l.find(explicitPath); path != "" {
		return path
	}
	return DefaultConfigPath()
}

// find returns explicitPath or the first existing search path; "" when none.
func (l *Loader) find(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	for _, path := range l.searchPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// DefaultConfigPath returns the per-user config location
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "image-editor-mcp", "config.yaml")
}

// loadFromFile decodes YAML on top of cfg so absent keys keep their defaults
func (l *Loader) loadFromFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	return yaml.Unmarshal(data, cfg)
}

// getDefaultSearchPaths returns the default configuration search paths
func getDefaultSearchPaths() []string {
	paths := []string{}

	if envPath := os.Getenv(EnvPrefix + "_CONFIG_PATH"); envPath != "" {
		paths = append(paths, envPath)
	}

	paths = append(paths, "image-editor.yaml")

	return append(paths, DefaultConfigPath())
}

// applyEnvironmentOverrides applies IMAGE_EDITOR_* variables to config
func applyEnvironmentOverrides(cfg *Config) error {
	if root := getenv("IMAGES_ROOT"); root != "" {
		cfg.Images.Root = root
	}

	if transport := getenv("SERVER_TRANSPORT"); transport != "" {
		cfg.Server.Transport = strings.ToLower(transport)
	}
	if addr := getenv("SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	if quality := getenv("ENGINE_DEFAULT_QUALITY"); quality != "" {
		v, err := strconv.Atoi(quality)
		if err != nil {
			return fmt.Errorf("invalid %s_ENGINE_DEFAULT_QUALITY: %w", EnvPrefix, err)
		}
		cfg.Engine.DefaultQuality = v
	}
	if maxBytes := getenv("ENGINE_MAX_SOURCE_BYTES"); maxBytes != "" {
		v, err := strconv.ParseInt(maxBytes, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s_ENGINE_MAX_SOURCE_BYTES: %w", EnvPrefix, err)
		}
		cfg.Engine.MaxSourceBytes = v
	}
	if orient := getenv("ENGINE_AUTO_ORIENT"); orient != "" {
		cfg.Engine.AutoOrient = strings.ToLower(orient) == "true"
	}

	if logLevel := getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile := getenv("LOG_FILE"); logFile != "" {
		cfg.Logging.File = logFile
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.Logging.Color = false
	}

	return nil
}

func getenv(key string) string {
	return os.Getenv(EnvPrefix + "_" + key)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// SampleConfig returns the annotated sample configuration
func SampleConfig() string {
	return embeddedConfigSample
}

// CreateSampleConfig writes the annotated sample configuration to path.
// An existing file is left untouched unless force is set.
func CreateSampleConfig(path string, force bool) error {
	return writeConfigFile(path, []byte(embeddedConfigSample), force)
}

// writeConfigFile replaces path through a temp file in the same directory so
// a reader never sees a half written config.
func writeConfigFile(path string, data []byte, force bool) error {
	if fileExists(path) && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set config file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
