package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/pagesmith-dev/pagesmith/internal/registry"
	"github.com/spf13/cobra"
)

var listsJSON bool

var listsCmd = &cobra.Command{
	Use:   "lists [name]",
	Short: "Show registry lists",
	Long: `Without arguments, list every list declared in the link registry with its
entry count. With a name, show that list's entries in order.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runLists,
}

func init() {
	listsCmd.Flags().BoolVar(&listsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listsCmd)
}

// listSummary is one registry list for display.
type listSummary struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

func runLists(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	reg, err := registry.Open(p.fs, p.cfg.Paths.Registry)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		entries, err := reg.ReadList(args[0])
		if err != nil {
			return err
		}
		if listsJSON {
			if entries == nil {
				entries = []registry.LinkEntry{}
			}
			return printJSON(cmd, entries)
		}
		return printEntriesTable(cmd, entries)
	}

	summaries := []listSummary{}
	for _, name := range reg.Names() {
		s := listSummary{Name: name, Entries: -1}
		if entries, err := reg.ReadList(name); err == nil {
			s.Entries = len(entries)
		}
		summaries = append(summaries, s)
	}

	if listsJSON {
		return printJSON(cmd, summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No lists declared in %s.\n", reg.Path())
		return nil
	}
	return printListsTable(cmd, summaries)
}

func printListsTable(cmd *cobra.Command, summaries []listSummary) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tENTRIES")
	for _, s := range summaries {
		count := fmt.Sprint(s.Entries)
		if s.Entries < 0 {
			count = "malformed"
		}
		fmt.Fprintf(w, "%s\t%s\n", s.Name, count)
	}
	return w.Flush()
}

func printEntriesTable(cmd *cobra.Command, entries []registry.LinkEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "HREF\tLABEL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.Href, e.Label)
	}
	return w.Flush()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
