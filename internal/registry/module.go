package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pagesmith-dev/pagesmith/internal/jslex"
)

// moduleDoc is a registry held as ES module source. Lists are
// `export const <name> = [ … ];` declarations at the top level; every other
// statement is carried through untouched.
type moduleDoc struct {
	src   string
	decls []*moduleDecl
}

type moduleDecl struct {
	name    string
	open    int // offset of '['
	close   int // offset of the matching ']'
	entries []moduleEntry
	err     error // shape error; the declaration is not a link list
}

type moduleEntry struct {
	LinkEntry
	start, end int  // offsets of '{' and just past '}'
	comma      bool // a ',' follows the entry
}

var errUnterminated = errors.New("unterminated bracket")

func parseModule(data []byte) (*moduleDoc, error) {
	d := &moduleDoc{src: string(data)}
	if err := d.scan(); err != nil {
		return nil, err
	}
	return d, nil
}

// moduleScan is the significant token stream of a module with every
// bracket paired to its partner.
type moduleScan struct {
	toks  []jslex.Token
	match map[int]int // index of an opening bracket -> index of its closer
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// scan walks the top level of the module looking for array declarations.
func (d *moduleDoc) scan() error {
	all, err := jslex.Tokenize(d.src)
	if err != nil {
		return err
	}
	m := &moduleScan{toks: jslex.Significant(all), match: make(map[int]int)}

	var stack []int
	for i, t := range m.toks {
		if t.Kind != jslex.Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 || closers[m.toks[stack[len(stack)-1]].Text] != t.Text {
				return fmt.Errorf("unbalanced %q at offset %d", t.Text, t.Start)
			}
			m.match[stack[len(stack)-1]] = i
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return errUnterminated
	}

	d.decls = nil
	for i := 0; i < len(m.toks); i++ {
		if end, ok := m.match[i]; ok {
			i = end
			continue
		}
		if !m.toks[i].IsWord("export") {
			continue
		}
		if decl, end := m.declaration(i + 1); decl != nil {
			d.decls = append(d.decls, decl)
			i = end
		}
	}
	return nil
}

func (m *moduleScan) at(i int) jslex.Token {
	if i < len(m.toks) {
		return m.toks[i]
	}
	return jslex.Token{}
}

// declaration reads `const <name> [: type] = [ … ]` starting at token i. It
// returns nil when the statement is not an array declaration, and otherwise
// the index of the closing ']'.
func (m *moduleScan) declaration(i int) (*moduleDecl, int) {
	if !m.at(i).IsWord("const", "let", "var") {
		return nil, i
	}
	name := m.at(i + 1)
	if name.Kind != jslex.Word {
		return nil, i
	}
	i += 2

	// Skip a type annotation up to the initializer.
	if m.at(i).IsPunct(":") {
		for ; i < len(m.toks) && !m.at(i).IsPunct("=") && !m.at(i).IsPunct(";"); i++ {
			if end, ok := m.match[i]; ok {
				i = end
			}
		}
	}
	if !m.at(i).IsPunct("=") || !m.at(i+1).IsPunct("[") {
		return nil, i
	}

	open := i + 1
	close := m.match[open]
	decl := &moduleDecl{name: name.Text, open: m.toks[open].Start, close: m.toks[close].Start}
	decl.entries, decl.err = m.parseEntries(open, close)
	return decl, close
}

// parseEntries reads the object literals between the brackets at token
// indexes open and close.
func (m *moduleScan) parseEntries(open, close int) ([]moduleEntry, error) {
	var entries []moduleEntry
	for i := open + 1; i < close; {
		n := len(entries) + 1
		if !m.toks[i].IsPunct("{") {
			return nil, fmt.Errorf("element %d is not an object literal", n)
		}
		entry, err := m.parseObject(i)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", n, err)
		}
		i = m.match[i] + 1
		if i < close {
			if !m.toks[i].IsPunct(",") {
				return nil, fmt.Errorf("element %d: expected ',' or ']'", n)
			}
			entry.comma = true
			i++
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseObject reads `{ href: '…', label: '…' }` whose '{' is token open.
func (m *moduleScan) parseObject(open int) (moduleEntry, error) {
	close := m.match[open]
	fields := make(map[string]string, 2)
	for i := open + 1; i < close; {
		var key string
		switch k := m.toks[i]; k.Kind {
		case jslex.Word:
			key = k.Text
		case jslex.String:
			var err error
			if key, err = jslex.Unquote(k); err != nil {
				return moduleEntry{}, err
			}
		default:
			return moduleEntry{}, fmt.Errorf("unexpected %q in object", k.Text)
		}
		if i+1 >= close || !m.toks[i+1].IsPunct(":") {
			return moduleEntry{}, fmt.Errorf("field %q has no value", key)
		}
		if i+2 >= close || (m.toks[i+2].Kind != jslex.String && m.toks[i+2].Kind != jslex.Template) {
			return moduleEntry{}, fmt.Errorf("field %q is not a string literal", key)
		}
		value, err := jslex.Unquote(m.toks[i+2])
		if errors.Is(err, jslex.ErrInterpolated) {
			return moduleEntry{}, fmt.Errorf("field %q is an interpolated template", key)
		} else if err != nil {
			return moduleEntry{}, err
		}
		if _, dup := fields[key]; dup {
			return moduleEntry{}, fmt.Errorf("field %q repeated", key)
		}
		fields[key] = value

		i += 3
		if i < close {
			if !m.toks[i].IsPunct(",") {
				return moduleEntry{}, fmt.Errorf("field %q: expected ',' or '}'", key)
			}
			i++
		}
	}

	href, okHref := fields["href"]
	label, okLabel := fields["label"]
	if !okHref || !okLabel || len(fields) != 2 {
		return moduleEntry{}, errors.New("object must have exactly href and label")
	}
	return moduleEntry{
		LinkEntry: LinkEntry{Href: href, Label: label},
		start:     m.toks[open].Start,
		end:       m.toks[close].End,
	}, nil
}

func (d *moduleDoc) find(name string) *moduleDecl {
	for _, decl := range d.decls {
		if decl.name == name {
			return decl
		}
	}
	return nil
}

func (d *moduleDoc) names() []string {
	names := make([]string, 0, len(d.decls))
	for _, decl := range d.decls {
		names = append(names, decl.name)
	}
	return names
}

func (d *moduleDoc) list(name string) ([]LinkEntry, error) {
	decl := d.find(name)
	if decl == nil {
		return nil, ErrNotFound
	}
	if decl.err != nil {
		return nil, decl.err
	}
	out := make([]LinkEntry, len(decl.entries))
	for i, e := range decl.entries {
		out[i] = e.LinkEntry
	}
	return out, nil
}

// appendEntry inserts a new object after the last element, repairing a
// missing trailing comma, and keeps the closing bracket's indentation.
func (d *moduleDoc) appendEntry(name string, e LinkEntry) error {
	decl := d.find(name)
	if decl == nil {
		return ErrNotFound
	}
	if decl.err != nil {
		return decl.err
	}

	src := d.src
	item := fmt.Sprintf("{ href: %s, label: %s },", quoteJS(e.Href), quoteJS(e.Label))

	inner := src[decl.open+1 : decl.close]
	insertAt := decl.open + 1 + len(strings.TrimRight(inner, " \t\r\n"))
	gap := src[insertAt:decl.close]
	closeIndent := ""
	if k := strings.LastIndexByte(gap, '\n'); k >= 0 {
		closeIndent = gap[k+1:]
	}

	indent := "  "
	comma := -1
	if n := len(decl.entries); n > 0 {
		last := decl.entries[n-1]
		if ind, ok := lineIndent(src, last.start); ok {
			indent = ind
		}
		if !last.comma {
			comma = last.end
		}
	}

	var b strings.Builder
	if comma >= 0 {
		b.WriteString(src[:comma])
		b.WriteByte(',')
		b.WriteString(src[comma:insertAt])
	} else {
		b.WriteString(src[:insertAt])
	}
	b.WriteString("\n" + indent + item + "\n" + closeIndent)
	b.WriteString(src[decl.close:])

	d.src = b.String()
	return d.scan()
}

func (d *moduleDoc) bytes() ([]byte, error) {
	return []byte(d.src), nil
}

// lineIndent returns the whitespace before offset when offset is the first
// non-blank character of its line.
func lineIndent(src string, offset int) (string, bool) {
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	prefix := src[start:offset]
	if strings.TrimLeft(prefix, " \t") != "" {
		return "", false
	}
	return prefix, true
}

// quoteJS renders s as a single-quoted JavaScript string literal.
func quoteJS(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '`':
			b.WriteString("\\`")
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
