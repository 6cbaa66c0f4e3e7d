package cli

import (
	"fmt"

	"github.com/pagesmith-dev/pagesmith/internal/normalize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	normalizeDryRun bool
	normalizeDiff   bool
)

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeDryRun, "dry-run", false, "Report what would change without writing")
	normalizeCmd.Flags().BoolVar(&normalizeDryRun, "dry", false, "Alias for --dry-run")
	_ = normalizeCmd.Flags().MarkHidden("dry")
	normalizeCmd.Flags().BoolVar(&normalizeDiff, "diff", false, "Print a unified diff of each change")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Bring every page into line with the layout and sidebar conventions",
	Long: `Walk the pages directory and, for each page:

  - section index pages are regenerated from the index template;
  - every other page gets the canonical Layout import as its first
    statement, is wrapped in <Layout> when it has none, and pages in a
    detail group get the group's sidebar.

A file is only written when its content changes, and the first time a file
is written a backup copy is kept next to it. Running normalize twice in a
row changes nothing the second time.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		plan, err := normalize.Build(p.fs, p.cfg)
		if err != nil {
			return err
		}
		if err := reportPlan(cmd, p.fs, p.cfg.BackupSuffix, plan); err != nil {
			return err
		}

		summary := plan.Summary()
		if normalizeDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "[DRY] Done. %d file(s) would be updated, %d index page(s) would be templated.\n",
				summary.Updated, summary.Templated)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Done. %d file(s) updated, %d index page(s) templated.\n",
			summary.Updated, summary.Templated)
		return nil
	},
}

// reportPlan prints the per-file lines for plan and, unless this is a dry
// run, applies it.
func reportPlan(cmd *cobra.Command, fsys afero.Fs, backupSuffix string, plan *normalize.Plan) error {
	out := cmd.OutOrStdout()
	if normalizeDiff {
		if err := plan.Diff(out); err != nil {
			return err
		}
	}
	if normalizeDryRun {
		for _, c := range plan.Changes {
			fmt.Fprintf(out, "[DRY] Would update: %s\n", c.Identity)
		}
		return nil
	}
	_, err := plan.Apply(fsys, backupSuffix, func(c normalize.Change) {
		fmt.Fprintf(out, "Updated: %s\n", c.Identity)
	})
	return err
}
