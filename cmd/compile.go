/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/spec"
	"github.com/fulmenhq/rgd/pkg/unified"
	"github.com/spf13/cobra"
)

func newCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile-spec [root]",
		Short: "Build the unified specification documents",
		Long: `Build the unified specification from the JSONC tree under <root>/spec.

Modes:
  default    unified human (.jsonc) and machine (.json) twins under spec/
  --domain   only the bundles of one domain (e.g. 01, foundation, 01_foundation)
  --def      full pipeline: spec→standard mirror, human twin, machine twin from
             standard, benchmark snapshots and every domain bundle`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
	cmd.Flags().StringP("name", "n", "", "Base name for unified output files (default from config)")
	cmd.Flags().StringP("domain", "d", "", "Compile only the bundles of a single domain")
	cmd.Flags().Bool("def", false, "Run the full definition pipeline")
	cmd.Flags().Bool("full-definition", false, "Alias for --def")
	_ = cmd.Flags().MarkHidden("full-definition")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = cfg.Unified.BaseName
	}
	domain, _ := cmd.Flags().GetString("domain")
	full, _ := cmd.Flags().GetBool("def")
	if alias, _ := cmd.Flags().GetBool("full-definition"); alias {
		full = true
	}

	logger.Info("Initializing specification compiler", logger.String("root", root))
	project, err := unified.OpenProject(root, cfg)
	if err != nil {
		return err
	}

	var artifacts unified.Artifacts
	switch {
	case full:
		var skipped []*spec.ParseError
		artifacts, skipped, err = project.FullPipeline(name)
		warnSkipped(skipped)
	case domain != "":
		artifacts, err = compileDomain(project, domain, name)
	default:
		artifacts, err = compileUnified(project, name)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, a := range artifacts {
		fmt.Fprintln(out, a)
	}
	return nil
}

func compileUnified(p *unified.Project, name string) (unified.Artifacts, error) {
	scanned, err := p.ScanSpec(name)
	if err != nil {
		return nil, err
	}
	warnSkipped(scanned.Skipped)
	return p.Compile(scanned.Records, name)
}

// compileDomain resolves the selector before writing anything so an unknown
// domain leaves the tree untouched.
func compileDomain(p *unified.Project, selector, name string) (unified.Artifacts, error) {
	scanned, err := p.ScanSpec(name)
	if err != nil {
		return nil, err
	}
	warnSkipped(scanned.Skipped)
	ix := spec.BuildIndex(scanned.Records)
	domain, err := ix.Resolve(selector)
	if err != nil {
		return nil, exitcode.WithCode(err, exitcode.UsageError)
	}
	return p.CompileDomains(ix, []string{domain})
}

func warnSkipped(skipped []*spec.ParseError) {
	if len(skipped) == 0 {
		return
	}
	paths := make([]string, 0, len(skipped))
	for _, s := range skipped {
		paths = append(paths, s.Path)
	}
	logger.Warn(fmt.Sprintf("%d file(s) skipped due to parse errors", len(skipped)), logger.Strings("files", paths))
}

func rootArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}
