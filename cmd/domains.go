/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"strconv"
	"strings"

	"github.com/fulmenhq/rgd/pkg/ascii"
	"github.com/fulmenhq/rgd/pkg/spec"
	"github.com/fulmenhq/rgd/pkg/unified"
	"github.com/spf13/cobra"
)

const maxAliasWidth = 48

func newDomainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "domains [root]",
		Short: "List spec domains, weights, file counts and aliases",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDomains,
	}
}

func runDomains(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	project, err := unified.OpenProject(root, cfg)
	if err != nil {
		return err
	}
	scanned, err := project.ScanSpec("")
	if err != nil {
		return err
	}
	warnSkipped(scanned.Skipped)

	ix := spec.BuildIndex(scanned.Records)
	rows := [][]string{{"DOMAIN", "WEIGHT", "FILES", "ALIASES"}}
	for _, d := range ix.Names() {
		records := ix.Records(d)
		rows = append(rows, []string{
			d,
			strconv.Itoa(records[0].Weight),
			strconv.Itoa(len(records)),
			ascii.TruncateForBox(strings.Join(ix.Aliases(d), ", "), maxAliasWidth),
		})
	}
	unknown := 0
	for _, r := range scanned.Records {
		if r.Domain == spec.UnknownDomain {
			unknown++
		}
	}
	if unknown > 0 {
		rows = append(rows, []string{spec.UnknownDomain, strconv.Itoa(spec.UnknownWeight), strconv.Itoa(unknown), "-"})
	}
	ascii.Table(cmd.OutOrStdout(), rows)
	return nil
}
