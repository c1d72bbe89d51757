/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/unified"
	"github.com/spf13/cobra"
)

func newStandardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-standard",
		Short: "Transpile the JSONC spec tree into strict JSON",
		Long: `Transpile the spec folder (JSONC) into a clean standard folder (JSON).

The destination is removed first. JSONC files are written as 2-space JSON with
a .json extension; every other file is copied verbatim. Invalid JSONC files are
reported and skipped without stopping the build.`,
		Args: cobra.NoArgs,
		RunE: runStandard,
	}
	cmd.Flags().String("src", "", "Source directory (JSONC) (default from config spec.dir)")
	cmd.Flags().String("dest", "", "Destination directory (JSON) (default from config standard.dir)")
	return cmd
}

func runStandard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, ".")
	if err != nil {
		return err
	}
	src, _ := cmd.Flags().GetString("src")
	if src == "" {
		src = cfg.Spec.Dir
	}
	dest, _ := cmd.Flags().GetString("dest")
	if dest == "" {
		dest = cfg.Standard.Dir
	}

	logger.Info(fmt.Sprintf("Initializing standard build: %s -> %s", src, dest))
	n, failures, err := unified.BuildStandard(src, dest, cfg.Spec.Extension)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		logger.Warn(fmt.Sprintf("%d invalid JSONC file(s) were not transpiled", len(failures)))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d files transpiled to %s\n", n, dest)
	return nil
}
