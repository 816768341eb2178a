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
	"io"
	"runtime"
	"runtime/debug"
	"sort"

	"github.com/spf13/cobra"
)

// Version information variables
// These are set at build time using ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

var (
	verbose    bool
	jsonOutput bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long: `Display version information about image-editor-mcp.

Shows the version number, build information and the tools the server exposes.`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "output version information as JSON")
}

func runVersion(cmd *cobra.Command, args []string) error {
	versionInfo := getVersionInfo()
	out := cmd.OutOrStdout()

	if jsonOutput {
		return outputJSON(out, versionInfo)
	}

	if verbose {
		return outputVerbose(out, versionInfo)
	}

	fmt.Fprintf(out, "image-editor-mcp version %s\n", versionInfo.Version)
	return nil
}

// VersionInfo contains all version-related information
type VersionInfo struct {
	Version      string            `json:"version"`
	Commit       string            `json:"commit"`
	Date         string            `json:"date"`
	GoVersion    string            `json:"go_version"`
	Platform     string            `json:"platform"`
	Architecture string            `json:"architecture"`
	OS           string            `json:"os"`
	BuildInfo    map[string]string `json:"build_info,omitempty"`
	Tools        []string          `json:"tools"`
	Formats      []string          `json:"formats"`
}

func getVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		Commit:       Commit,
		Date:         Date,
		GoVersion:    GoVersion,
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Architecture: runtime.GOARCH,
		OS:           runtime.GOOS,
		Tools:        []string{"adjustBrightness", "cropImage", "compressImage"},
		Formats:      []string{"jpeg", "png", "webp", "gif", "bmp", "tiff"},
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.BuildInfo = make(map[string]string)

		if buildInfo.Main.Version != "" {
			info.BuildInfo["module_version"] = buildInfo.Main.Version
		}

		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.Commit == "unknown" {
					info.Commit = setting.Value
				}
			case "vcs.time":
				if info.Date == "unknown" {
					info.Date = setting.Value
				}
			case "vcs.modified":
				info.BuildInfo["vcs_modified"] = setting.Value
			case "GOOS", "GOARCH", "CGO_ENABLED":
				info.BuildInfo[setting.Key] = setting.Value
			}
		}

		info.BuildInfo["dependency_count"] = fmt.Sprintf("%d", len(buildInfo.Deps))
	}

	return info
}

func outputJSON(w io.Writer, info VersionInfo) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func outputVerbose(w io.Writer, info VersionInfo) error {
	fmt.Fprintf(w, "image-editor-mcp version %s\n", info.Version)
	fmt.Fprintf(w, "Commit: %s\n", info.Commit)
	fmt.Fprintf(w, "Built: %s\n", info.Date)
	fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s\n", info.Platform)

	fmt.Fprintln(w, "\nTools:")
	for _, tool := range info.Tools {
		fmt.Fprintf(w, "  - %s\n", tool)
	}

	if len(info.BuildInfo) > 0 {
		fmt.Fprintln(w, "\nBuild information:")
		keys := make([]string, 0, len(info.BuildInfo))
		for key := range info.BuildInfo {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(w, "  %s: %s\n", key, info.BuildInfo[key])
		}
	}

	return nil
}
