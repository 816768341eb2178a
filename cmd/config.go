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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/common-creation/image-editor-mcp/internal/config"
	"github.com/common-creation/image-editor-mcp/internal/security"
)

var (
	outputFormat string
	forceInit    bool
	initCurrent  bool
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage image-editor-mcp configuration",
	Long: `View, create and validate image-editor-mcp configuration.

Settings are read from the config file, then IMAGE_EDITOR_* environment
variables, then command line flags.`,
}

// showCmd shows the current configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after file, environment and flag overrides.`,
	RunE:  runConfigShow,
}

// initCmd initializes a new configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Long: `Write a commented sample configuration file.

The file is created where the server would look for it: the --config path,
an existing config file on the search path, or
~/.config/image-editor-mcp/config.yaml. With --current the effective
settings are written instead of the commented sample.`,
	RunE: runConfigInit,
}

// validateCmd validates the configuration
var validateCmd = &cobra.Command{
	Use:   "validate [image-dir]",
	Short: "Validate the configuration",
	Long: `Validate the current configuration and, when an image folder is configured
or given, check that it exists and is a directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(validateCmd)

	showCmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "output format (yaml, json)")
	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing configuration file")
	initCmd.Flags().BoolVar(&initCurrent, "current", false, "write the effective configuration instead of the sample")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	var output []byte
	var err error

	switch strings.ToLower(outputFormat) {
	case "json":
		output, err = json.MarshalIndent(cfg, "", "  ")
	case "yaml", "yml":
		output, err = yaml.Marshal(cfg)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	ShowInfo("Configuration file: %s", describeConfigPath())
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(output), "\n"))
	return nil
}

// describeConfigPath names the file settings come from, noting when it does
// not exist and defaults apply.
func describeConfigPath() string {
	path := config.NewLoader().GetConfigPath(cfgFile)
	if _, err := os.Stat(path); err != nil {
		return path + " (not found, using defaults)"
	}
	return path
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader()
	configPath := loader.GetConfigPath(cfgFile)

	if initCurrent {
		current, err := loadConfiguration()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := loader.Save(configPath, current, forceInit); err != nil {
			return err
		}
		ShowSuccess("Current configuration written to %s", configPath)
		return nil
	}

	if err := config.CreateSampleConfig(configPath, forceInit); err != nil {
		return err
	}

	ShowSuccess("Configuration initialized at %s", configPath)
	ShowInfo("Set images.root or pass the image folder on the command line.")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		ShowError("Configuration validation failed:")
		ShowError("  %v", err)
		return fmt.Errorf("configuration is invalid")
	}

	root := cfg.Images.Root
	if len(args) == 1 {
		root = args[0]
	}
	if root != "" {
		sandbox, err := security.NewSandbox(root)
		if err != nil {
			return err
		}
		ShowInfo("Image folder: %s", sandbox.Root())
	}

	ShowSuccess("Configuration is valid")
	return nil
}
