package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"text/template"

	"github.com/pagesmith-dev/pagesmith/internal/config"
	"github.com/pagesmith-dev/pagesmith/internal/page"
	"github.com/pagesmith-dev/pagesmith/internal/registry"
	"github.com/spf13/afero"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"attr":  page.EscapeAttr,
	"quote": page.EscapeDoubleQuoted,
}).ParseFS(templateFS, "templates/*.tmpl"))

var (
	// ErrMissingDependency is returned when the layout, the sidebar
	// component, or the registry file does not exist.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrInvalidRequest is returned for an empty or escaping route, an empty
	// title, or a list name that is not an identifier.
	ErrInvalidRequest = errors.New("invalid request")
)

var listNameRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// Request describes one page to synthesize.
type Request struct {
	Route       string // e.g. "/travel/trips/tokyo-2026"; a page extension is stripped
	Title       string
	List        string // registry list the page is filed under
	Description string
	Force       bool // overwrite an existing page
}

// Result holds the outcome of a synthesis.
type Result struct {
	Route           string // normalized route, also the registry href
	PagePath        string
	PageCreated     bool
	PageOverwritten bool
	PageSkipped     bool // page existed and Force was not set
	RegistryChanged bool
}

// templateData holds the variables available to page templates.
type templateData struct {
	Title          string
	Description    string
	List           string
	Sidebar        string // rendered sidebar element; empty without a list
	LayoutImport   string
	LinkListImport string
	RegistryImport string
}

func newTemplateData(cfg *config.Config, title, description, list string) templateData {
	d := templateData{
		Title:          title,
		Description:    description,
		List:           list,
		LayoutImport:   cfg.Imports.Layout,
		LinkListImport: cfg.Imports.LinkList,
		RegistryImport: cfg.Imports.Registry,
	}
	if list != "" {
		d.Sidebar = page.SidebarElement(list)
	}
	return d
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderPage renders the stub content for a new page.
func RenderPage(cfg *config.Config, title, description, list string) (string, error) {
	return render("page.astro.tmpl", newTemplateData(cfg, title, description, list))
}

// RenderIndex renders the full content of a section index page.
func RenderIndex(cfg *config.Config, ip config.IndexPage) (string, error) {
	return render("index.astro.tmpl", newTemplateData(cfg, ip.Title, "", ip.List))
}

// NormalizeRoute strips the page extension, collapses repeated slashes and
// returns the route with exactly one leading slash.
func NormalizeRoute(route, ext string) (string, error) {
	r := strings.ReplaceAll(strings.TrimSpace(route), `\`, "/")
	if ext != "" && strings.HasSuffix(strings.ToLower(r), strings.ToLower(ext)) {
		r = r[:len(r)-len(ext)]
	}

	var segments []string
	for _, seg := range strings.Split(r, "/") {
		switch seg {
		case "":
			continue
		case ".", "..":
			return "", fmt.Errorf("%w: route %q contains %q", ErrInvalidRequest, route, seg)
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: route %q is empty", ErrInvalidRequest, route)
	}
	return "/" + strings.Join(segments, "/"), nil
}

// PagePath returns the page file for a normalized route.
func PagePath(cfg *config.Config, route string) string {
	return path.Join(cfg.Paths.Pages, strings.TrimPrefix(route, "/")+cfg.PageExtension)
}

// CheckDependencies verifies the layout, sidebar component and registry
// files exist.
func CheckDependencies(fsys afero.Fs, cfg *config.Config) error {
	for _, p := range []string{cfg.Paths.Layout, cfg.Paths.LinkList, cfg.Paths.Registry} {
		ok, err := afero.Exists(fsys, p)
		if err != nil {
			return fmt.Errorf("checking %s: %w", p, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingDependency, p)
		}
	}
	return nil
}

// Synthesize creates the page for req and files it under req.List in the
// registry. The list is looked up before anything is written; if the
// registry append fails the page write is undone.
func Synthesize(fsys afero.Fs, cfg *config.Config, req Request) (*Result, error) {
	route, err := NormalizeRoute(req.Route, cfg.PageExtension)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is empty", ErrInvalidRequest)
	}
	if !listNameRe.MatchString(req.List) {
		return nil, fmt.Errorf("%w: list name %q is not an identifier", ErrInvalidRequest, req.List)
	}

	if err := CheckDependencies(fsys, cfg); err != nil {
		return nil, err
	}
	reg, err := registry.Open(fsys, cfg.Paths.Registry)
	if err != nil {
		return nil, err
	}
	if _, err := reg.ReadList(req.List); err != nil {
		return nil, err
	}

	result := &Result{Route: route, PagePath: PagePath(cfg, route)}

	previous, err := afero.ReadFile(fsys, result.PagePath)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", result.PagePath, err)
	}

	if existed && !req.Force {
		result.PageSkipped = true
		slog.Debug("page exists, skipping write", "path", result.PagePath)
	} else {
		content, err := RenderPage(cfg, req.Title, req.Description, req.List)
		if err != nil {
			return nil, err
		}
		if err := fsys.MkdirAll(path.Dir(result.PagePath), 0755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", result.PagePath, err)
		}
		if err := afero.WriteFile(fsys, result.PagePath, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", result.PagePath, err)
		}
		result.PageCreated = !existed
		result.PageOverwritten = existed
		slog.Debug("page written", "path", result.PagePath, "overwritten", existed)
	}

	changed, err := reg.AppendIfAbsent(req.List, registry.LinkEntry{Href: route, Label: req.Title})
	if err != nil {
		if rerr := rollback(fsys, result, previous); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return nil, fmt.Errorf("updating registry list %s: %w", req.List, err)
	}
	result.RegistryChanged = changed
	return result, nil
}

// rollback undoes the page write recorded in result.
func rollback(fsys afero.Fs, result *Result, previous []byte) error {
	switch {
	case result.PageCreated:
		if err := fsys.Remove(result.PagePath); err != nil {
			return fmt.Errorf("removing %s: %w", result.PagePath, err)
		}
	case result.PageOverwritten:
		if err := afero.WriteFile(fsys, result.PagePath, previous, 0644); err != nil {
			return fmt.Errorf("restoring %s: %w", result.PagePath, err)
		}
	}
	slog.Debug("page write rolled back", "path", result.PagePath)
	return nil
}
