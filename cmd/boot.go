/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/rgd/pkg/ascii"
	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/fulmenhq/rgd/pkg/kernel"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/spf13/cobra"
)

func newBootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot [kernel]",
		Short: "Load every kernel module and print a summary",
		Long: `Load each module listed by the kernel into a memory bank keyed by file stem.

The text output is a summary of identity, loaded modules, per-joint torque
constraints and the alignment mission, framed in a panel unless --quiet is
set. json, yaml and toml print the memory bank itself. Modules that fail to
load are reported and skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBoot,
	}
	cmd.Flags().StringP("output", "o", kernel.FormatText, "Output format: "+strings.Join(kernel.Formats, "|"))
	return cmd
}

func runBoot(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if !validFormat(format) {
		return exitcode.WithCode(fmt.Errorf("unsupported output format %q (valid: %s)", format, strings.Join(kernel.Formats, ", ")), exitcode.UsageError)
	}

	path, err := locateKernel(args)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Booting: %s", filepath.Base(path)))

	k, err := kernel.Load(path)
	if err != nil {
		return err
	}
	b := k.Boot()
	data, err := b.Render(format)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	if strings.EqualFold(format, kernel.FormatText) && !quiet {
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		data = []byte(ascii.TitledBox("LLM System Prompt", lines))
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}
	if len(b.Failed) > 0 {
		logger.Warn(fmt.Sprintf("%d module(s) failed to load", len(b.Failed)), logger.Strings("modules", b.Failed))
	} else {
		logger.Success("Cognitive grounding complete")
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range kernel.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
