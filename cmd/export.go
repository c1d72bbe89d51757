/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/fulmenhq/rgd/pkg/export"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <target>",
		Short: "Translate the compiled spec into an ecosystem's config files",
		Long: fmt.Sprintf(`Translate the machine twin (<root>/<spec.dir>/<unified.base_name>.json) into
configuration files for an external ecosystem.

Targets: %s

The ros2 target writes ros2_control.yaml, rgd_limits.xacro and
rgd_hardware.xacro. Run 'rgd compile-spec' first to produce the machine twin.`, strings.Join(export.Targets(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	cmd.Flags().String("root", ".", "Project root containing the spec directory")
	cmd.Flags().StringP("out", "o", "", "Output directory (default from config export.out)")
	cmd.Flags().StringP("name", "n", "", "Base name of the machine twin (default from config)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	// Resolve the target first so an unknown one writes nothing.
	exp, err := export.New(args[0], cfg)
	if err != nil {
		return exitcode.WithCode(err, exitcode.UsageError)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = cfg.Export.Out
	}
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = cfg.Unified.BaseName
	}

	twin := filepath.Join(cfg.SpecDir(root), name+".json")
	in, err := export.LoadInput(twin)
	if err != nil {
		return err
	}
	logger.Success(fmt.Sprintf("Synapse formed: OPENRGD <--> %s", strings.ToUpper(exp.Name())))

	written, err := exp.Export(in, out)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
