/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"os"

	"github.com/fulmenhq/rgd/internal/ops"
	"github.com/fulmenhq/rgd/pkg/buildinfo"
	"github.com/fulmenhq/rgd/pkg/config"
	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/fulmenhq/rgd/pkg/export"
	"github.com/fulmenhq/rgd/pkg/importer"
	"github.com/fulmenhq/rgd/pkg/integrity"
	"github.com/fulmenhq/rgd/pkg/kernel"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand(reg *ops.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rgd",
		Short: "Robot specification compiler",
		Long: `rgd manages a robot specification: a tree of JSONC modules grouped into
numbered domain folders. It compiles the tree into unified human and machine
documents, mirrors it into strict JSON, verifies the result against benchmark
snapshots, imports URDF/USD descriptions and exports ROS 2 control files.

Examples:
   rgd compile-spec            # Unified twins under ./spec
   rgd compile-spec --def      # Full release pipeline with benchmarks
   rgd integrity check         # Verify against benchmark snapshots
   rgd export ros2             # ros2_control.yaml + xacro files
   rgd import robot.urdf       # Scaffold a spec tree from URDF`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	addGlobalFlags(cmd.PersistentFlags())

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("rgd {{.Version}}\n")

	// Grouped help by command group (Spec → Interop → Support)
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c != c.Root() {
			c.Println(c.UsageString())
			return
		}
		c.Println(c.Long)
		c.Println()
		for _, group := range ops.GroupOrder {
			c.Printf("%s:\n", ops.GroupTitle(group))
			for _, r := range reg.GetCommandsByGroup(group) {
				c.Printf("  %-15s %s\n", r.Name, r.Description)
			}
			c.Println()
		}
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	fs.Bool("json", false, "Output logs in JSON format")
	fs.Bool("no-color", false, "Disable colored output")
	fs.Bool("quiet", false, "Only log errors")
	fs.String("config", "", "Config file (default: rgd.yaml in the project root or $HOME)")
}

// registerSubcommands adds all subcommands to the root command and classifies
// them in reg for grouped help.
func registerSubcommands(cmd *cobra.Command, reg *ops.Registry) {
	for _, sub := range []struct {
		cmd      *cobra.Command
		group    ops.CommandGroup
		category ops.CommandCategory
	}{
		{newCompileCommand(), ops.GroupSpec, ops.CategoryCompilation},
		{newStandardCommand(), ops.GroupSpec, ops.CategoryCompilation},
		{newIntegrityCommand(), ops.GroupSpec, ops.CategoryValidation},
		{newCheckCommand(), ops.GroupSpec, ops.CategoryKernel},
		{newBootCommand(), ops.GroupSpec, ops.CategoryKernel},
		{newExportCommand(), ops.GroupInterop, ops.CategoryExport},
		{newImportCommand(), ops.GroupInterop, ops.CategoryImport},
		{newDomainsCommand(), ops.GroupSupport, ops.CategoryInformation},
		{newVersionCommand(), ops.GroupSupport, ops.CategoryInformation},
	} {
		cmd.AddCommand(sub.cmd)
		if err := reg.Register(sub.cmd.Name(), sub.group, sub.category, sub.cmd, sub.cmd.Short); err != nil {
			panic(err)
		}
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand(ops.GetRegistry())

func init() {
	registerSubcommands(rootCmd, ops.GetRegistry())
}

// Execute runs the root command and exits with the code mapped from the
// returned error. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	rootCmd.PrintErrln("Error:", err)
	os.Exit(exitCode(err))
}

// exitCode maps an error to a process exit code. An explicit code attached
// with exitcode.WithCode wins over the sentinel mapping.
func exitCode(err error) int {
	var coded *exitcode.Error
	if errors.As(err, &coded) {
		return exitcode.Code(err)
	}
	switch {
	case errors.Is(err, spec.ErrUnknownDomain),
		errors.Is(err, export.ErrUnknownTarget):
		return exitcode.UsageError
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return exitcode.UnsupportedFormat
	case errors.Is(err, kernel.ErrInvalidKernel),
		errors.Is(err, export.ErrMissingModule):
		return exitcode.ValidationError
	case errors.Is(err, kernel.ErrKernelNotFound),
		errors.Is(err, integrity.ErrBenchmarkMissing),
		errors.Is(err, os.ErrNotExist):
		return exitcode.FileSystemError
	}
	return exitcode.GeneralError
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Quiet:     quiet,
		Component: "rgd",
	}
	if err := logger.Initialize(cfg); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}

// loadConfig reads configuration for a command operating on root. Load
// failures are configuration errors.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.LoadOptions{ProjectRoot: root, ConfigFile: file})
	if err != nil {
		return nil, exitcode.WithCode(err, exitcode.ConfigError)
	}
	return cfg, nil
}

// useColor reports whether command output may carry ANSI styling.
func useColor(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return !noColor && os.Getenv("NO_COLOR") == ""
}
