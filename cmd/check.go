/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/fulmenhq/rgd/pkg/kernel"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [kernel]",
		Short: "Validate the kernel and its module load order",
		Long: `Validate a kernel file against the kernel schema and confirm that every
module in module_loading_order_list exists. Module paths are relative to the
project root, with a fallback under spec/.

Without an argument the kernel is auto-detected from the current directory
(spec/00_core/kernel.jsonc, spec/kernel.jsonc, kernel.jsonc, 00_core/kernel.jsonc).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
}

// locateKernel returns the kernel path from args, or auto-detects it.
func locateKernel(args []string) (string, error) {
	if len(args) > 0 {
		return filepath.Abs(args[0])
	}
	logger.Info("Auto-detecting kernel")
	return kernel.Find(".")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := locateKernel(args)
	if err != nil {
		return err
	}
	logger.Success(fmt.Sprintf("Locked on: %s", filepath.Base(path)))

	k, err := kernel.Load(path)
	if err != nil {
		return err
	}
	if err := k.Validate(); err != nil {
		return err
	}

	res := k.Check()
	fmt.Fprint(cmd.OutOrStdout(), res.Tree())
	for _, m := range res.Missing() {
		logger.Error(fmt.Sprintf("Missing: %s", m))
	}
	if !res.OK() {
		return exitcode.WithCode(fmt.Errorf("%d of %d modules missing", len(res.Missing()), len(res.Modules)), exitcode.ValidationError)
	}
	logger.Success("Kernel integrity: 100%")
	return nil
}
