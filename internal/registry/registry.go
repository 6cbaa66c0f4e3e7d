package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Registry is an opened registry document.
type Registry struct {
	fs   afero.Fs
	path string
	raw  []byte
	doc  document
}

// Open reads and decodes the registry at path. The codec is chosen by file
// extension.
func Open(fs afero.Fs, filePath string) (*Registry, error) {
	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("reading registry %s: %w", filePath, err)
	}
	doc, err := decode(filePath, data)
	if err != nil {
		return nil, err
	}
	return &Registry{fs: fs, path: filePath, raw: data, doc: doc}, nil
}

func decode(filePath string, data []byte) (document, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".js", ".mjs", ".mts":
		doc, err := parseModule(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, filePath, err)
		}
		return doc, nil
	case ".yaml", ".yml":
		doc, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, filePath, err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}
}

// Path returns the registry file path.
func (r *Registry) Path() string { return r.path }

// Names returns the declared list names in document order.
func (r *Registry) Names() []string { return r.doc.names() }

// Has reports whether a list is declared.
func (r *Registry) Has(name string) bool {
	for _, n := range r.doc.names() {
		if n == name {
			return true
		}
	}
	return false
}

// ReadList returns the entries of the named list in order.
func (r *Registry) ReadList(name string) ([]LinkEntry, error) {
	if !r.Has(name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, r.path)
	}
	entries, err := r.doc.list(name)
	if err != nil {
		return nil, fmt.Errorf("%w: list %q in %s: %v", ErrMalformed, name, r.path, err)
	}
	return entries, nil
}

// AppendIfAbsent adds entry at the tail of the named list unless an entry
// with the same href is already there. It reports whether the registry file
// changed. The whole document is rewritten on insert.
func (r *Registry) AppendIfAbsent(name string, entry LinkEntry) (bool, error) {
	entries, err := r.ReadList(name)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Href == entry.Href {
			return false, nil
		}
	}

	if err := r.doc.appendEntry(name, entry); err != nil {
		return false, fmt.Errorf("%w: list %q in %s: %v", ErrMalformed, name, r.path, err)
	}
	data, err := r.doc.bytes()
	if err != nil {
		r.restore()
		return false, fmt.Errorf("encoding registry %s: %w", r.path, err)
	}

	perm := os.FileMode(0644)
	if info, err := r.fs.Stat(r.path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := afero.WriteFile(r.fs, r.path, data, perm); err != nil {
		r.restore()
		return false, fmt.Errorf("writing registry %s: %w", r.path, err)
	}
	r.raw = data
	return true, nil
}

// restore re-decodes the last persisted bytes after a failed write.
func (r *Registry) restore() {
	if doc, err := decode(r.path, r.raw); err == nil {
		r.doc = doc
	}
}

// Check reports malformed lists, duplicate hrefs, and hrefs that are not
// site-absolute.
func (r *Registry) Check() []Problem {
	var problems []Problem
	for _, name := range r.doc.names() {
		entries, err := r.doc.list(name)
		if err != nil {
			problems = append(problems, Problem{List: name, Message: err.Error()})
			continue
		}
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			if !strings.HasPrefix(e.Href, "/") {
				problems = append(problems, Problem{List: name, Message: fmt.Sprintf("href %q is not site-absolute", e.Href)})
			}
			if seen[e.Href] {
				problems = append(problems, Problem{List: name, Message: fmt.Sprintf("duplicate href %q", e.Href)})
			}
			seen[e.Href] = true
		}
	}
	return problems
}
