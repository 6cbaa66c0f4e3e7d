package cli

import (
	"fmt"

	"github.com/pagesmith-dev/pagesmith/internal/normalize"
	"github.com/spf13/cobra"
)

func init() {
	sidebarizeCmd.Flags().BoolVar(&normalizeDryRun, "dry-run", false, "Report what would change without writing")
	sidebarizeCmd.Flags().BoolVar(&normalizeDiff, "diff", false, "Print a unified diff of each change")
	rootCmd.AddCommand(sidebarizeCmd)
}

var sidebarizeCmd = &cobra.Command{
	Use:   "sidebarize",
	Short: "Move bare <LinkList> elements into the layout sidebar",
	Long: `Upgrade pages written before the sidebar slot existed: every <LinkList>
without a slot attribute gets slot="sidebar" (and a vertical orientation
when none is set), and pages with front matter but no Layout import get one.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		plan, err := normalize.BuildSidebarize(p.fs, p.cfg)
		if err != nil {
			return err
		}
		if err := reportPlan(cmd, p.fs, p.cfg.BackupSuffix, plan); err != nil {
			return err
		}

		if normalizeDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "[DRY] Done. %d file(s) would be updated.\n", len(plan.Changes))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Done. %d file(s) updated.\n", len(plan.Changes))
		return nil
	},
}
