/*
Copyright © 2025 CODA Project

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/common-creation/image-editor-mcp/internal/config"
	"github.com/common-creation/image-editor-mcp/internal/editor"
	"github.com/common-creation/image-editor-mcp/internal/engine"
	apperrors "github.com/common-creation/image-editor-mcp/internal/errors"
	"github.com/common-creation/image-editor-mcp/internal/logging"
	"github.com/common-creation/image-editor-mcp/internal/mcp"
	"github.com/common-creation/image-editor-mcp/internal/security"
)

var (
	cfgFile   string
	debugMode bool
	noColor   bool
	cfg       *config.Config
)

// stderr is the only terminal output; stdout carries the MCP stream
var stderr = lipgloss.NewRenderer(os.Stderr)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "image-editor-mcp [flags] <image-dir>",
	Short: "MCP server for editing images in a single folder",
	Long: `image-editor-mcp exposes image editing tools to MCP clients.

Every tool works on files inside the image folder given on the command
line (or as images.root in the configuration) and writes its result next
to the source under a derived name:
- adjustBrightness: scale the brightness of an image
- cropImage: extract a rectangle from an image
- compressImage: re-encode a JPEG, PNG or WebP image at a given quality`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// SetVersion sets the version information for the application
func SetVersion(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// ctx is cancelled on shutdown.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ShowError("%v", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/image-editor-mcp/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file")

	// Server flags
	rootCmd.Flags().String("transport", "", "MCP transport (stdio, http)")
	rootCmd.Flags().String("addr", "", "listen address for the http transport")

	// Bind flags to viper
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("server.transport", rootCmd.Flags().Lookup("transport"))
	viper.BindPFlag("server.addr", rootCmd.Flags().Lookup("addr"))

	// Environment variable support
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfiguration reads the config file and environment, then applies
// command line flags on top.
func loadConfiguration() (*config.Config, error) {
	loaded, err := config.NewLoader().Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if viper.IsSet("server.transport") {
		loaded.Server.Transport = strings.ToLower(viper.GetString("server.transport"))
	}
	if viper.IsSet("server.addr") {
		loaded.Server.Addr = viper.GetString("server.addr")
	}
	if viper.IsSet("logging.file") {
		loaded.Logging.File = viper.GetString("logging.file")
	}
	if debugMode || viper.GetBool("debug") {
		loaded.Logging.Level = "debug"
	}
	if noColor || viper.GetBool("no_color") || os.Getenv("NO_COLOR") != "" {
		loaded.Logging.Color = false
	}

	return loaded, loaded.Validate()
}

// runServe starts the MCP server on the configured transport
func runServe(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = loadConfiguration()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(args) == 1 {
		cfg.Images.Root = args[0]
	}
	if cfg.Images.Root == "" {
		return apperrors.Configuration("please provide an image folder path as a command-line argument")
	}

	logger, err := cfg.SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	sandbox, err := security.NewSandbox(cfg.Images.Root)
	if err != nil {
		return err
	}
	cfg.Images.Root = sandbox.Root()

	serverLog := cfg.ServerLogger()
	serverLog.Info(fmt.Sprintf("Image folder set to '%s'", cfg.Images.Root))

	pixels := engine.New(engine.Options{
		DefaultQuality: cfg.Engine.DefaultQuality,
		MaxSourceBytes: cfg.Engine.MaxSourceBytes,
		AutoOrient:     cfg.Engine.AutoOrient,
	})
	ed := editor.New(sandbox, pixels, logger)

	server, err := mcp.NewServer(mcp.ServerConfig{
		Name:      cfg.Server.Name,
		Version:   cfg.Server.Version,
		Transport: cfg.Server.Transport,
		Addr:      cfg.Server.Addr,
	}, ed, logger)
	if err != nil {
		return err
	}

	serverLog.DebugWith("Starting MCP server", logging.Fields{
		"tools": server.Status().Tools,
	})

	if err := server.Run(cmd.Context(), cfg.Server.Transport); err != nil {
		serverLog.ErrorWith("MCP server stopped with an error", logging.Fields{
			"error": err.Error(),
			"state": server.Status().State.String(),
		})
		return err
	}
	serverLog.Info("MCP server stopped")
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	if cfg == nil {
		loaded, err := loadConfiguration()
		if err != nil {
			ShowWarning("Failed to load configuration: %v", err)
			loaded = config.NewDefaultConfig()
		}
		cfg = loaded
	}
	return cfg
}

func colorEnabled() bool {
	return !noColor && os.Getenv("NO_COLOR") == ""
}

func render(color lipgloss.Color, text string) string {
	if !colorEnabled() {
		return text
	}
	return stderr.NewStyle().Foreground(color).Render(text)
}

// ShowError displays an error message to the user
func ShowError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, render(lipgloss.Color("9"), "Error: "+fmt.Sprintf(format, args...)))
}

// ShowWarning displays a warning message to the user
func ShowWarning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, render(lipgloss.Color("11"), "Warning: "+fmt.Sprintf(format, args...)))
}

// ShowSuccess displays a success message to the user
func ShowSuccess(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, render(lipgloss.Color("10"), "✓ "+fmt.Sprintf(format, args...)))
}

// ShowInfo displays an informational message to the user
func ShowInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
