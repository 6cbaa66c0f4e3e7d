package normalize

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagesmith-dev/pagesmith/internal/config"
	"github.com/pagesmith-dev/pagesmith/internal/page"
	"github.com/pagesmith-dev/pagesmith/internal/scaffold"
	"github.com/spf13/afero"
)

// pageFunc computes the new content of one page.
type pageFunc func(cfg *config.Config, identity, content string) (string, Kind, error)

// Build computes the normalization plan for every page under the configured
// pages directory.
func Build(fsys afero.Fs, cfg *config.Config) (*Plan, error) {
	return build(fsys, cfg, Page)
}

// Page normalizes the content of the page at identity. Section index pages
// are rendered from the index template; other pages get the canonical layout
// import, a Layout wrapper, and the sidebar of their detail group.
func Page(cfg *config.Config, identity, content string) (string, Kind, error) {
	if ip, ok := cfg.IndexPageFor(identity); ok {
		out, err := scaffold.RenderIndex(cfg, ip)
		if err != nil {
			return "", Templated, err
		}
		return out, Templated, nil
	}

	p := page.Parse(content)
	p.EnsureLeadingImport(page.LayoutSymbol, cfg.Imports.Layout)
	p.WrapInLayout(page.TitleFromIdentity(identity))

	if g, ok := cfg.DetailGroupFor(identity); ok && g.List != "" && p.InjectSidebar(g.List) {
		at := 1
		if !p.HasImportOf(page.LinkListSymbol) {
			p.InsertImport(at, &page.Import{Default: page.LinkListSymbol, Source: cfg.Imports.LinkList})
			at++
		}
		if !p.HasImportOf(g.List) {
			p.InsertImport(at, &page.Import{
				Named:  []page.Binding{{Name: g.List, Local: g.List}},
				Source: cfg.Imports.Registry,
			})
		}
	}
	return p.String(), Normalized, nil
}

// build walks the pages directory and records a change for each page whose
// content fn would alter.
func build(fsys afero.Fs, cfg *config.Config, fn pageFunc) (*Plan, error) {
	plan := &Plan{}
	err := Walk(fsys, cfg, func(f File) error {
		after, kind, err := fn(cfg, f.Identity, f.Content)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Identity, err)
		}
		if after == f.Content {
			slog.Debug("page conforms", "page", f.Identity)
			return nil
		}
		plan.Changes = append(plan.Changes, Change{
			Path:     f.Path,
			Identity: f.Identity,
			Kind:     kind,
			Before:   f.Content,
			After:    after,
			mode:     f.Mode,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// File is one page visited by Walk.
type File struct {
	Path     string // slash-separated, relative to the store root
	Identity string // path under the pages directory
	Content  string
	Mode     os.FileMode
}

// Walk calls fn for every page under the configured pages directory that is
// not excluded, in lexical order.
func Walk(fsys afero.Fs, cfg *config.Config, fn func(File) error) error {
	root := filepath.Clean(cfg.Paths.Pages)
	if ok, err := afero.DirExists(fsys, root); err != nil || !ok {
		return fmt.Errorf("pages directory %s not found", cfg.Paths.Pages)
	}

	return afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), cfg.PageExtension) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		identity := filepath.ToSlash(rel)
		if cfg.Excluded(identity) {
			slog.Debug("excluded", "page", identity)
			return nil
		}

		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		return fn(File{
			Path:     filepath.ToSlash(p),
			Identity: identity,
			Content:  string(data),
			Mode:     info.Mode().Perm(),
		})
	})
}
