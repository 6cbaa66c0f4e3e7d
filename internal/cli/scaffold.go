package cli

import (
	"errors"
	"fmt"

	"github.com/pagesmith-dev/pagesmith/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	scaffoldDesc  string
	scaffoldForce bool
)

func init() {
	scaffoldCmd.Flags().StringVar(&scaffoldDesc, "desc", "", "Page description")
	scaffoldCmd.Flags().BoolVar(&scaffoldForce, "force", false, "Overwrite the page if it already exists")
	rootCmd.AddCommand(scaffoldCmd)
}

var scaffoldCmd = &cobra.Command{
	Use:     "scaffold <route> <title> <list>",
	Aliases: []string{"add-page"},
	Short:   "Create a page and add it to a registry list",
	Long: `Create a stub page at <route> wired to the site layout with <list> as its
sidebar, then append { href: <route>, label: <title> } to that list in the
link registry unless an entry with the same href is already there.

An existing page is left alone unless --force is given; the registry is
still updated.`,
	Example: `  pagesmith scaffold /travel/trips/tokyo-2026 "Tokyo 2026" travelTrips
  pagesmith scaffold music/concerts/laufey-2025 "Laufey" musicConcerts --desc "Live at the Hollywood Bowl"`,
	Args: usageArgs(cobra.ExactArgs(3)),
	RunE: runScaffold,
}

func runScaffold(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	req := scaffold.Request{
		Route:       args[0],
		Title:       args[1],
		List:        args[2],
		Description: scaffoldDesc,
		Force:       scaffoldForce,
	}
	result, err := scaffold.Synthesize(p.fs, p.cfg, req)
	if err != nil {
		if errors.Is(err, scaffold.ErrInvalidRequest) {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case result.PageCreated:
		fmt.Fprintf(out, "Created: %s\n", result.PagePath)
	case result.PageOverwritten:
		fmt.Fprintf(out, "Overwrote: %s\n", result.PagePath)
	case result.PageSkipped:
		fmt.Fprintf(out, "Page already exists: %s (use --force to overwrite)\n", result.PagePath)
	}
	if result.RegistryChanged {
		fmt.Fprintf(out, "Updated registry: %s += { href: '%s', label: '%s' }\n", req.List, result.Route, req.Title)
	} else {
		fmt.Fprintf(out, "Registry already contains href '%s' in %s; skipping append.\n", result.Route, req.List)
	}
	fmt.Fprintln(out, "Done.")
	return nil
}
