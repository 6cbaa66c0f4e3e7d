package normalize

import (
	"github.com/pagesmith-dev/pagesmith/internal/config"
	"github.com/pagesmith-dev/pagesmith/internal/page"
	"github.com/spf13/afero"
)

// BuildSidebarize computes the plan that moves bare LinkList elements into
// the layout's sidebar slot across the page tree.
func BuildSidebarize(fsys afero.Fs, cfg *config.Config) (*Plan, error) {
	return build(fsys, cfg, Sidebarize)
}

// Sidebarize upgrades every LinkList without a slot to a vertical sidebar
// list. Pages with front matter but no Layout import also get the canonical
// one.
func Sidebarize(cfg *config.Config, _ string, content string) (string, Kind, error) {
	p := page.Parse(content)
	if p.Preamble != nil && !p.HasImportOf(page.LayoutSymbol) {
		p.InsertImport(0, &page.Import{Default: page.LayoutSymbol, Source: cfg.Imports.Layout})
	}
	p.UpgradeBareLinkLists()
	return p.String(), Sidebarized, nil
}
