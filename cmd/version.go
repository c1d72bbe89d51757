/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/fulmenhq/rgd/pkg/buildinfo"
	"github.com/spf13/cobra"
)

// VersionInfo is the --json payload of the version command.
type VersionInfo struct {
	Version       string `json:"version"`
	ModuleVersion string `json:"moduleVersion,omitempty"`
	GoVersion     string `json:"goVersion"`
	Platform      string `json:"platform"`
	Arch          string `json:"arch"`
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show rgd version information",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	// Shadows the global --json (log format) for this command only.
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:       buildinfo.Version(),
		ModuleVersion: buildinfo.ModuleVersion(),
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	info := currentVersion()
	out := cmd.OutOrStdout()

	if jsonOutput {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "rgd %s\n", info.Version)
	if info.ModuleVersion != "" && info.ModuleVersion != "(devel)" {
		fmt.Fprintf(out, "Module: %s\n", info.ModuleVersion)
	}
	fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", info.Platform, info.Arch)
	return nil
}
