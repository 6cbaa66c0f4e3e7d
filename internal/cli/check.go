package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pagesmith-dev/pagesmith/internal/config"
	"github.com/pagesmith-dev/pagesmith/internal/normalize"
	"github.com/pagesmith-dev/pagesmith/internal/page"
	"github.com/pagesmith-dev/pagesmith/internal/registry"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the site's configuration, registry and sidebar bindings",
	Long: `Run consistency checks over the site:

  - the configuration file is valid;
  - the layout, sidebar component and link registry exist;
  - every registry list is well formed, with unique site-absolute hrefs;
  - every list named in the configuration is declared in the registry;
  - every <LinkList items={name}> whose list is imported from the registry
    module names a declared list.

Exits non-zero when any check fails.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	p, err := loadProject()
	if err != nil {
		fmt.Fprintln(out, "Configuration:")
		printConfigFailure(out, err)
		return fmt.Errorf("configuration is not usable")
	}

	failures := 0
	fail := func(format string, args ...any) {
		failures++
		fmt.Fprintf(out, "  [FAIL] "+format+"\n", args...)
	}

	fmt.Fprintln(out, "Configuration:")
	if p.cfg.File != "" {
		rel, err := filepath.Rel(p.root, p.cfg.File)
		if err != nil {
			rel = p.cfg.File
		}
		fmt.Fprintf(out, "  [ OK ] %s (version %s)\n", filepath.ToSlash(rel), p.cfg.Version)
	} else {
		fmt.Fprintf(out, "  [INFO] No config file; using built-in defaults\n")
	}

	fmt.Fprintln(out, "Dependencies:")
	for _, dep := range []string{p.cfg.Paths.Layout, p.cfg.Paths.LinkList, p.cfg.Paths.Registry} {
		if ok, _ := afero.Exists(p.fs, dep); ok {
			fmt.Fprintf(out, "  [ OK ] %s\n", dep)
		} else {
			fmt.Fprintf(out, "  [MISS] %s\n", dep)
			failures++
		}
	}

	fmt.Fprintln(out, "Registry:")
	reg, err := registry.Open(p.fs, p.cfg.Paths.Registry)
	if err != nil {
		fail("%v", err)
	} else {
		problems := reg.Check()
		for _, pr := range problems {
			fail("%s: %s", pr.List, pr.Message)
		}
		if len(problems) == 0 {
			fmt.Fprintf(out, "  [ OK ] %d list(s) well formed\n", len(reg.Names()))
		}
		missing := 0
		for _, name := range p.cfg.ListNames() {
			if !reg.Has(name) {
				fail("list %s is named in the configuration but not declared", name)
				missing++
			}
		}
		if missing == 0 {
			fmt.Fprintf(out, "  [ OK ] every configured list is declared\n")
		}
	}

	fmt.Fprintln(out, "Pages:")
	if reg == nil {
		fmt.Fprintf(out, "  [WARN] skipped; registry is not readable\n")
	} else {
		pages, unbound := 0, 0
		err := normalize.Walk(p.fs, p.cfg, func(f normalize.File) error {
			pages++
			pg := page.Parse(f.Content)
			fromRegistry := pg.NamedImportsFrom(p.cfg.Imports.Registry)
			for _, local := range pg.LinkListBindings() {
				name, ok := fromRegistry[local]
				if ok && !reg.Has(name) {
					fail("%s: sidebar bound to undeclared list %s", f.Identity, name)
					unbound++
				}
			}
			return nil
		})
		switch {
		case err != nil:
			fail("%v", err)
		case unbound == 0:
			fmt.Fprintf(out, "  [ OK ] %d page(s); every registry-bound LinkList names a declared list\n", pages)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}

func printConfigFailure(out io.Writer, err error) {
	var invalid *config.InvalidError
	if !errors.As(err, &invalid) {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return
	}
	fmt.Fprintf(out, "  [FAIL] %s: %d validation issue(s):\n", invalid.Path, len(invalid.Issues))
	for _, issue := range invalid.Issues {
		if issue.Path != "" {
			fmt.Fprintf(out, "    - %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(out, "    - %s\n", issue.Message)
		}
	}
}
