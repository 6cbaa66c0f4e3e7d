package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pagesmith-dev/pagesmith/internal/branding"
	"github.com/pagesmith-dev/pagesmith/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	rootDir    string
	configFile string
	verbose    bool
)

// errUsage marks errors caused by how the command was invoked. Execute
// prints the command usage after them.
var errUsage = errors.New("invalid usage")

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates site pages from a template, keeps the navigation link registry
in step with them, and brings existing pages into line with the shared layout and sidebar.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Site root directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default <root>/"+branding.ConfigFile()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(rootCmd.ErrOrStderr(), cmd.UsageString())
		}
	}
	return err
}

// usageArgs wraps a positional argument validator so its failures are
// reported as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

// project is the resolved site a command operates on.
type project struct {
	root string
	cfg  *config.Config
	fs   afero.Fs // rooted at root; all config paths resolve against it
}

func loadProject() (*project, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving site root %s: %w", rootDir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("site root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site root %s is not a directory", root)
	}

	cfg, err := config.Load(config.LoadOptions{Root: root, File: configFile})
	if err != nil {
		return nil, err
	}
	slog.Debug("configuration loaded", "root", root, "file", cfg.File)
	return &project{root: root, cfg: cfg, fs: afero.NewBasePathFs(afero.NewOsFs(), root)}, nil
}
