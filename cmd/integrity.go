/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/fulmenhq/rgd/pkg/integrity"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/unified"
	"github.com/spf13/cobra"
)

// errIntegrityFailed is returned when any document differs from its benchmark.
var errIntegrityFailed = errors.New("unified spec integrity check failed")

func newIntegrityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Verify unified documents against benchmark snapshots",
	}

	check := &cobra.Command{
		Use:   "check [root]",
		Short: "Rebuild both twins and compare them with the benchmarks",
		Long: `Rebuild the human twin from spec/ and the machine twin from standard/ in
memory and compare them with the snapshots under standard/benchmarks.

Generation timestamps are ignored. Any mismatch fails the command with exit
code 5. Run 'rgd compile-spec --def' to create the benchmarks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIntegrityCheck,
	}
	check.Flags().StringP("name", "n", "", "Base name of the benchmark files (default from config)")
	cmd.AddCommand(check)
	return cmd
}

func runIntegrityCheck(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = cfg.Unified.BaseName
	}

	project, err := unified.OpenProject(root, cfg)
	if err != nil {
		return err
	}
	logger.Info("Running integrity check for unified spec", logger.String("root", root))
	report, err := integrity.Check(project, name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := useColor(cmd)
	for _, v := range report.Verdicts {
		fmt.Fprintf(out, "%s integrity: %s\n", v.Kind, v.Label(color))
		if len(v.Fields) > 0 {
			fmt.Fprintf(out, "  differing fields:\n    %s\n", strings.Join(v.Fields, "\n    "))
		}
		if v.Diff != "" {
			fmt.Fprintf(out, "%s\n", v.Diff)
		}
	}

	if !report.OK() {
		return exitcode.WithCode(errIntegrityFailed, exitcode.IntegrityMismatch)
	}
	logger.Success("Unified spec integrity check passed")
	return nil
}
