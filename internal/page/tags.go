package page

import (
	"regexp"
	"strings"
)

// Component names used by generated markup.
const (
	LayoutSymbol   = "Layout"
	LinkListSymbol = "LinkList"
)

// Tag is an opening or self-closing element tag found in the body.
type Tag struct {
	Name        string
	Start       int // offset of '<'
	End         int // offset just past '>'
	Attrs       string
	SelfClosing bool
}

var (
	sidebarSlotRe = regexp.MustCompile(`(?:^|\s)slot\s*=\s*["']sidebar["']`)
	slotAttrRe    = regexp.MustCompile(`(?:^|\s)slot\s*=`)
	orientAttrRe  = regexp.MustCompile(`(?:^|\s)orientation\s*=`)
	itemsAttrRe   = regexp.MustCompile(`(?:^|\s)items\s*=\s*\{\s*([A-Za-z_$][\w$]*)\s*\}`)
)

// FindTags returns every tag named name in the body, in order. Every tag is
// scanned to its end so markup inside attribute values is skipped. HTML
// comments and {/* … */} or {// …} expression comments are ignored.
// Attribute values may contain '>' when quoted or inside a {…} expression.
func (p *Page) FindTags(name string) []Tag {
	var tags []Tag
	for _, tag := range scanTags(p.Body) {
		if tag.Name == name {
			tags = append(tags, tag)
		}
	}
	return tags
}

func scanTags(src string) []Tag {
	var tags []Tag
	depth := 0 // open { expressions in the body
	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "<!--"):
			end := strings.Index(src[i+4:], "-->")
			if end < 0 {
				return tags
			}
			i += end + 7
			continue
		case src[i] == '{':
			depth++
			i++
			// A line comment only opens an expression.
			j := i
			for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\r' || src[j] == '\n') {
				j++
			}
			if strings.HasPrefix(src[j:], "//") {
				end := strings.IndexByte(src[j:], '\n')
				if end < 0 {
					return tags
				}
				i = j + end + 1
			}
			continue
		case src[i] == '}':
			depth = max(0, depth-1)
			i++
			continue
		case depth > 0 && strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return tags
			}
			i += end + 4
			continue
		}

		if src[i] != '<' || i+1 >= len(src) || !isTagNameStart(src[i+1]) {
			i++
			continue
		}
		after := i + 1
		for after < len(src) && !isTagBoundary(src[after]) {
			after++
		}
		end, ok := scanTagEnd(src, after)
		if !ok {
			i++
			continue
		}
		attrs := src[after : end-1]
		tags = append(tags, Tag{
			Name:        src[i+1 : after],
			Start:       i,
			End:         end,
			Attrs:       attrs,
			SelfClosing: strings.HasSuffix(strings.TrimRight(attrs, " \t\r\n"), "/"),
		})
		i = end
	}
	return tags
}

func isTagNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isTagBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '>' || c == '/'
}

// scanTagEnd returns the offset just past the '>' closing a tag whose
// attributes start at i. Outside {…} a quote opens a value only right after
// '='; inside, every quote opens a string.
func scanTagEnd(src string, i int) (int, bool) {
	var quote, prev byte
	depth := 0
	for ; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == '\\' && (quote != '"' || depth > 0) {
				i++
			} else if c == quote {
				quote, prev = 0, c
			}
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			continue
		case c == '"' || c == '\'':
			if depth > 0 || prev == '=' {
				quote = c
			}
		case c == '`':
			if depth > 0 {
				quote = c
			}
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '>' && depth == 0:
			return i + 1, true
		}
		prev = c
	}
	return 0, false
}

// LayoutOpenTag returns the first Layout tag in the body.
func (p *Page) LayoutOpenTag() (Tag, bool) {
	tags := p.FindTags(LayoutSymbol)
	if len(tags) == 0 {
		return Tag{}, false
	}
	return tags[0], true
}

// WrapInLayout wraps the whole body in a Layout element unless a Layout tag
// is already present. It reports whether the page changed.
func (p *Page) WrapInLayout(title string) bool {
	if _, ok := p.LayoutOpenTag(); ok {
		return false
	}
	if p.Preamble != nil && !strings.HasSuffix(p.Preamble.Close, "\n") {
		p.Preamble.Close += "\n"
	}
	p.Body = `<Layout title="` + EscapeDoubleQuoted(title) + "\">\n" + p.Body + "\n</Layout>\n"
	return true
}

// HasSidebar reports whether any element in the body fills the sidebar
// slot.
func (p *Page) HasSidebar() bool {
	for _, tag := range scanTags(p.Body) {
		if sidebarSlotRe.MatchString(tag.Attrs) {
			return true
		}
	}
	return false
}

// InjectSidebar places a vertical LinkList bound to list as the first child
// of the first non-self-closing Layout element. Pages that already have a
// sidebar, or have no such element, are left alone.
func (p *Page) InjectSidebar(list string) bool {
	if p.HasSidebar() {
		return false
	}
	for _, tag := range p.FindTags(LayoutSymbol) {
		if tag.SelfClosing {
			continue
		}
		p.Body = p.Body[:tag.End] + "\n  " + SidebarElement(list) + p.Body[tag.End:]
		return true
	}
	return false
}

// SidebarElement renders the sidebar LinkList bound to list.
func SidebarElement(list string) string {
	return `<LinkList slot="sidebar" items={` + list + `} orientation="vertical" />`
}

// UpgradeBareLinkLists moves every LinkList that has no slot into the
// sidebar, adding a vertical orientation unless one is set. It returns the
// number of tags changed.
func (p *Page) UpgradeBareLinkLists() int {
	tags := p.FindTags(LinkListSymbol)
	changed := 0
	for i := len(tags) - 1; i >= 0; i-- {
		tag := tags[i]
		if slotAttrRe.MatchString(tag.Attrs) {
			continue
		}
		add := ` slot="sidebar"`
		if !orientAttrRe.MatchString(tag.Attrs) {
			add += ` orientation="vertical"`
		}
		at := tag.Start + 1 + len(tag.Name)
		p.Body = p.Body[:at] + add + p.Body[at:]
		changed++
	}
	return changed
}

// LinkListBindings returns the identifiers bound with items={name} on
// LinkList elements, in document order. Expressions other than a bare
// identifier are skipped.
func (p *Page) LinkListBindings() []string {
	var names []string
	for _, tag := range p.FindTags(LinkListSymbol) {
		if m := itemsAttrRe.FindStringSubmatch(tag.Attrs); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}
