package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagesmith-dev/pagesmith/internal/branding"
	"github.com/pagesmith-dev/pagesmith/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default " + branding.ConfigFile() + " to the site root",
	Long: `Write the built-in configuration to ` + branding.ConfigFile() + ` in the site root so
the paths, imports and section tables can be edited. An existing file is
never overwritten.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(rootDir)
		if err != nil {
			return fmt.Errorf("resolving site root %s: %w", rootDir, err)
		}

		configPath := config.FilePath(root)
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("project already initialized: %s exists", configPath)
		}
		if err := os.WriteFile(configPath, config.Defaults(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", configPath, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Run '%s check' to verify the site against it.\n", branding.CLIName())
		return nil
	},
}
