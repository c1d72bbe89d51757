/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/fulmenhq/rgd/pkg/importer"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert a URDF or USD description into a spec tree",
		Long: `Import a robot description and convert it into a spec tree.

The importer is selected by file extension (.urdf, .xml, .usda, .usd; binary
USD is rejected). The tree is written to <out>/spec/, where <out> defaults to
RGD-<robot_name>. It holds a kernel, the description, actuation dynamics and
an alignment module, ready for 'rgd compile-spec'.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	cmd.Flags().StringP("out", "o", "", "Root for the generated structure (default RGD-<robot_name>)")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s: %w", path, err)
	}

	imp, err := importer.ForFile(path)
	if err != nil {
		return exitcode.WithCode(err, exitcode.UnsupportedFormat)
	}
	logger.Info(fmt.Sprintf("Importing %s description", imp.Name()), logger.String("file", path))

	res, err := imp.Import(path)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = importer.DefaultRoot(res.RobotName)
	}
	written, err := importer.WriteTree(out, res)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
