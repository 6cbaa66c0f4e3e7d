package normalize

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
)

// Kind classifies a planned change.
type Kind int

const (
	// Normalized pages keep their body; imports, wrapping or the sidebar
	// were adjusted.
	Normalized Kind = iota
	// Templated pages are section indexes regenerated from the template.
	Templated
	// Sidebarized pages had bare LinkLists moved into the sidebar slot.
	Sidebarized
)

func (k Kind) String() string {
	switch k {
	case Normalized:
		return "normalized"
	case Templated:
		return "templated"
	case Sidebarized:
		return "sidebarized"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Change is one page whose content would differ after the run.
type Change struct {
	Path     string // file path in the store
	Identity string // slash-separated path under the pages directory
	Kind     Kind
	Before   string
	After    string

	mode os.FileMode
}

// Plan is the full set of changes computed for a page tree. Dry runs print
// it; real runs Apply it.
type Plan struct {
	Changes []Change
}

// Summary counts applied (or, for a dry run, planned) changes.
type Summary struct {
	Updated   int // files whose content changed
	Templated int // of those, section index pages regenerated
}

// Summary counts the planned changes.
func (p *Plan) Summary() Summary {
	var s Summary
	for _, c := range p.Changes {
		s.add(c)
	}
	return s
}

func (s *Summary) add(c Change) {
	s.Updated++
	if c.Kind == Templated {
		s.Templated++
	}
}

// Apply writes every change. Before the first modification of a file its
// previous content is saved with backupSuffix appended to the name; an
// existing backup is never replaced. applied, when non-nil, is called after
// each file is written. Apply stops at the first I/O error and returns what
// was written so far.
func (p *Plan) Apply(fsys afero.Fs, backupSuffix string, applied func(Change)) (Summary, error) {
	var s Summary
	for _, c := range p.Changes {
		if err := applyChange(fsys, c, backupSuffix); err != nil {
			return s, err
		}
		s.add(c)
		if applied != nil {
			applied(c)
		}
	}
	return s, nil
}

func applyChange(fsys afero.Fs, c Change, backupSuffix string) error {
	mode := c.mode
	if mode == 0 {
		mode = 0644
	}
	if backupSuffix != "" {
		backup := c.Path + backupSuffix
		exists, err := afero.Exists(fsys, backup)
		if err != nil {
			return fmt.Errorf("checking backup %s: %w", backup, err)
		}
		if !exists {
			if err := afero.WriteFile(fsys, backup, []byte(c.Before), mode); err != nil {
				return fmt.Errorf("writing backup %s: %w", backup, err)
			}
		} else {
			slog.Debug("keeping existing backup", "path", backup)
		}
	}
	if err := afero.WriteFile(fsys, c.Path, []byte(c.After), mode); err != nil {
		return fmt.Errorf("writing %s: %w", c.Path, err)
	}
	return nil
}

// Diff writes a unified diff of every change to w.
func (p *Plan) Diff(w io.Writer) error {
	for _, c := range p.Changes {
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(c.Before),
			B:        difflib.SplitLines(c.After),
			FromFile: "a/" + c.Path,
			ToFile:   "b/" + c.Path,
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("diffing %s: %w", c.Path, err)
		}
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}
	return nil
}
