package page

import (
	"regexp"
	"strings"
)

// Import is a structurally recognised import statement.
type Import struct {
	Default   string
	Named     []Binding
	Namespace string
	Source    string
}

// Binding is one name inside an import's braces.
type Binding struct {
	Name  string
	Local string // differs from Name for `a as b`
}

var (
	importFromRe = regexp.MustCompile(`^import\s+` +
		`(?:([A-Za-z_$][\w$]*)\s*(?:,\s*)?)?` +
		`(?:\{([^{}]*)\}\s*|\*\s*as\s+([A-Za-z_$][\w$]*)\s*)?` +
		`from\s*['"]([^'"\n]*)['"]\s*;?\s*(?://[^\n]*)?$`)
	importBareRe = regexp.MustCompile(`^import\s*['"]([^'"\n]*)['"]\s*;?\s*(?://[^\n]*)?$`)
	identRe      = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

// ParseImport recognises a complete import statement. Statements it cannot
// fully account for are reported as not imports.
func ParseImport(text string) (*Import, bool) {
	s := strings.TrimSpace(text)
	if m := importBareRe.FindStringSubmatch(s); m != nil {
		return &Import{Source: m[1]}, true
	}
	m := importFromRe.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	if m[1] == "type" {
		// Type-only imports bind nothing at runtime.
		return nil, false
	}
	imp := &Import{Default: m[1], Namespace: m[3], Source: m[4]}
	if m[2] != "" {
		for _, part := range strings.Split(m[2], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, local, hasAlias := strings.Cut(part, " as ")
			name, local = strings.TrimSpace(name), strings.TrimSpace(local)
			if !hasAlias {
				local = name
			}
			if !identRe.MatchString(name) || !identRe.MatchString(local) {
				return nil, false
			}
			imp.Named = append(imp.Named, Binding{Name: name, Local: local})
		}
	}
	return imp, true
}

// Binds reports whether the import introduces symbol into scope.
func (imp *Import) Binds(symbol string) bool {
	if imp.Default == symbol || imp.Namespace == symbol {
		return true
	}
	for _, b := range imp.Named {
		if b.Local == symbol {
			return true
		}
	}
	return false
}

// bindingCount returns how many local names the import introduces.
func (imp *Import) bindingCount() int {
	n := len(imp.Named)
	if imp.Default != "" {
		n++
	}
	if imp.Namespace != "" {
		n++
	}
	return n
}

// without returns a copy of imp with symbol unbound.
func (imp *Import) without(symbol string) *Import {
	out := &Import{Source: imp.Source}
	if imp.Default != symbol {
		out.Default = imp.Default
	}
	if imp.Namespace != symbol {
		out.Namespace = imp.Namespace
	}
	for _, b := range imp.Named {
		if b.Local != symbol {
			out.Named = append(out.Named, b)
		}
	}
	return out
}

// String renders the import in the single-quoted, semicolon-terminated form
// used by generated pages.
func (imp *Import) String() string {
	var parts []string
	if imp.Default != "" {
		parts = append(parts, imp.Default)
	}
	if imp.Namespace != "" {
		parts = append(parts, "* as "+imp.Namespace)
	} else if len(imp.Named) > 0 {
		names := make([]string, len(imp.Named))
		for i, b := range imp.Named {
			names[i] = b.Name
			if b.Local != b.Name {
				names[i] += " as " + b.Local
			}
		}
		parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
	}
	if len(parts) == 0 {
		return "import '" + imp.Source + "';"
	}
	return "import " + strings.Join(parts, ", ") + " from '" + imp.Source + "';"
}

// HasImportOf reports whether any preamble import binds symbol.
func (p *Page) HasImportOf(symbol string) bool {
	if p.Preamble == nil {
		return false
	}
	for _, s := range p.Preamble.Statements {
		if s.Import != nil && s.Import.Binds(symbol) {
			return true
		}
	}
	return false
}

// NamedImportsFrom maps each local name bound by a braced import from source
// to the name it imports.
func (p *Page) NamedImportsFrom(source string) map[string]string {
	names := make(map[string]string)
	if p.Preamble == nil {
		return names
	}
	for _, s := range p.Preamble.Statements {
		if s.Import == nil || s.Import.Source != source {
			continue
		}
		for _, b := range s.Import.Named {
			names[b.Local] = b.Name
		}
	}
	return names
}

// RemoveImportsOf drops every binding of symbol from the preamble. Imports
// left with no bindings are removed entirely. It returns the number of
// statements touched.
func (p *Page) RemoveImportsOf(symbol string) int {
	if p.Preamble == nil {
		return 0
	}
	touched := 0
	kept := p.Preamble.Statements[:0]
	for _, s := range p.Preamble.Statements {
		if s.Import == nil || !s.Import.Binds(symbol) {
			kept = append(kept, s)
			continue
		}
		touched++
		if s.Import.bindingCount() <= 1 {
			continue
		}
		rest := s.Import.without(symbol)
		code := strings.TrimLeft(s.Text, " \t")
		indent := s.Text[:len(s.Text)-len(code)]
		tail := code[len(strings.TrimRight(code, " \t\r\n")):]
		kept = append(kept, Statement{Text: indent + rest.String() + tail, Import: rest})
	}
	p.Preamble.Statements = kept
	return touched
}

// InsertImport adds imp as a new statement at index, clamped to the
// statement list. A preamble is created when missing.
func (p *Page) InsertImport(index int, imp *Import) {
	p.EnsurePreamble()
	stmts := p.Preamble.Statements
	index = max(0, min(index, len(stmts)))
	stmt := Statement{Text: imp.String() + "\n", Import: imp}
	p.Preamble.Statements = append(stmts[:index], append([]Statement{stmt}, stmts[index:]...)...)
}

// EnsureLeadingImport makes a default import of symbol from source the first
// preamble statement and the only import binding symbol. Any other import of
// symbol, whatever its source, is removed. It reports whether the page
// changed.
func (p *Page) EnsureLeadingImport(symbol, source string) bool {
	if p.leadingImportIs(symbol, source) {
		return false
	}
	p.RemoveImportsOf(symbol)
	p.InsertImport(0, &Import{Default: symbol, Source: source})
	return true
}

func (p *Page) leadingImportIs(symbol, source string) bool {
	if p.Preamble == nil || len(p.Preamble.Statements) == 0 {
		return false
	}
	first := p.Preamble.Statements[0].Import
	if first == nil || first.Default != symbol || first.Source != source || first.bindingCount() != 1 {
		return false
	}
	for _, s := range p.Preamble.Statements[1:] {
		if s.Import != nil && s.Import.Binds(symbol) {
			return false
		}
	}
	return true
}
