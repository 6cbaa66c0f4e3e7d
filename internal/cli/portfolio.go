package cli

import (
	"fmt"
	"os"
	"path"

	"github.com/pagesmith-dev/pagesmith/internal/portfolio"
	"github.com/spf13/cobra"
)

var (
	portfolioImagesPrefix string
	portfolioOut          string
)

func init() {
	portfolioCmd.Flags().StringVar(&portfolioImagesPrefix, "images-prefix", "", "URL prefix joined with each filename to form src (e.g. /images/portfolio/)")
	portfolioCmd.Flags().StringVar(&portfolioOut, "out", "", "Output file relative to the site root (default <data>/portfolio.json)")
	rootCmd.AddCommand(portfolioCmd)
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio <csv>",
	Short: "Convert a photo spreadsheet CSV into the portfolio data file",
	Long: `Read a CSV whose header names filename, title, description, date and
location, and write the portfolio JSON data file. Without --images-prefix
entries carry no src and the page shows a placeholder.

Rows with a missing title, an unrecognised date, or an image that is not
under the public directory are kept and reported as warnings.`,
	Example: `  pagesmith portfolio data/portfolio.csv --images-prefix /images/portfolio/`,
	Args:    usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening CSV: %w", err)
		}
		defer f.Close()

		rows, err := portfolio.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		photos, warnings := portfolio.Convert(rows, portfolio.Options{
			ImagesPrefix: portfolioImagesPrefix,
			PublicDir:    p.cfg.Paths.Public,
			FS:           p.fs,
		})
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "WARN: %s\n", w)
		}

		out := portfolioOut
		if out == "" {
			out = path.Join(p.cfg.Paths.Data, "portfolio.json")
		}
		if err := portfolio.Write(p.fs, out, photos); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: Wrote %d items to %s\n", len(photos), out)
		return nil
	},
}
