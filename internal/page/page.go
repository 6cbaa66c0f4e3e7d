package page

import (
	"strings"

	"github.com/pagesmith-dev/pagesmith/internal/jslex"
)

const fence = "---"

// Page is a parsed page file.
type Page struct {
	Preamble *Preamble // nil when the file has no front matter
	Body     string

	// dangling is set when the text opens a front-matter fence that is never
	// closed. The whole text is then held in Body.
	dangling bool
}

// Preamble is the front-matter block between the two fences.
type Preamble struct {
	Open       string // opening fence line, including its line break
	Statements []Statement
	Close      string // closing fence line, including its line break if any
}

// Statement is one preamble statement with the trailing blanks and line
// break that follow it. Several statements may share a line.
type Statement struct {
	Text   string
	Import *Import // nil for anything that is not an import
}

// Parse splits text into preamble and body. String on the result returns
// text unchanged.
func Parse(text string) *Page {
	open, rest, ok := cutFenceLine(text)
	if !ok {
		return &Page{Body: text}
	}

	offset := 0
	for offset < len(rest) {
		line := rest[offset:]
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i+1]
		}
		if isFence(line) {
			return &Page{
				Preamble: &Preamble{
					Open:       open,
					Statements: splitStatements(rest[:offset]),
					Close:      line,
				},
				Body: rest[offset+len(line):],
			}
		}
		offset += len(line)
	}
	return &Page{Body: text, dangling: true}
}

// String renders the page back to text.
func (p *Page) String() string {
	if p.Preamble == nil {
		return p.Body
	}
	var b strings.Builder
	b.WriteString(p.Preamble.Open)
	for _, s := range p.Preamble.Statements {
		b.WriteString(s.Text)
	}
	b.WriteString(p.Preamble.Close)
	b.WriteString(p.Body)
	return b.String()
}

// EnsurePreamble adds an empty front-matter block when the page has none.
// A dangling opening fence is dropped first.
func (p *Page) EnsurePreamble() {
	if p.Preamble != nil {
		return
	}
	if p.dangling {
		p.Body = strings.TrimPrefix(p.Body, fence)
		p.dangling = false
	}
	p.Preamble = &Preamble{Open: fence + "\n", Close: fence + "\n"}
}

// cutFenceLine reports whether text starts with a fence line and returns
// that line and the remainder.
func cutFenceLine(text string) (line, rest string, ok bool) {
	if !strings.HasPrefix(text, fence) {
		return "", "", false
	}
	line = text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i+1]
	}
	if !isFence(line) {
		return "", "", false
	}
	return line, text[len(line):], true
}

func isFence(line string) bool {
	return strings.TrimRight(line, " \t\r\n") == fence
}

// splitStatements groups preamble source into statements. A statement ends
// at a top-level ';' or line break and keeps the blanks, line comment and
// line break that follow it on its line. An import that spans several lines
// becomes one statement.
func splitStatements(src string) []Statement {
	ends := statementEnds(src)

	var out []Statement
	start := 0
	for i := 0; i < len(ends); i++ {
		end := ends[i]
		if startsImport(src[start:end]) {
			if _, ok := ParseImport(src[start:end]); !ok {
				for j := i + 1; j < len(ends); j++ {
					if _, ok := ParseImport(src[start:ends[j]]); ok {
						i, end = j, ends[j]
						break
					}
				}
			}
		}
		stmt := Statement{Text: src[start:end]}
		if startsImport(stmt.Text) {
			stmt.Import, _ = ParseImport(stmt.Text)
		}
		out = append(out, stmt)
		start = end
	}
	return out
}

// statementEnds returns the offset just past each statement in src. Source
// the lexer rejects is split at line breaks only.
func statementEnds(src string) []int {
	toks, err := jslex.Tokenize(src)
	if err != nil {
		return lineEnds(src)
	}

	var ends []int
	depth := 0
	afterSemi := false
	for _, t := range toks {
		switch t.Kind {
		case jslex.Space:
			continue
		case jslex.Newline:
			if depth == 0 {
				ends = append(ends, t.End)
				afterSemi = false
			}
			continue
		case jslex.Comment:
			if afterSemi && strings.HasPrefix(t.Text, "//") {
				continue
			}
		}
		if afterSemi {
			ends = append(ends, t.Start)
			afterSemi = false
		}
		if t.Kind != jslex.Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth = max(0, depth-1)
		case ";":
			afterSemi = depth == 0
		}
	}
	if n := len(ends); len(src) > 0 && (n == 0 || ends[n-1] != len(src)) {
		ends = append(ends, len(src))
	}
	return ends
}

func lineEnds(src string) []int {
	var ends []int
	for i := 0; i < len(src); {
		j := strings.IndexByte(src[i:], '\n')
		if j < 0 {
			ends = append(ends, len(src))
			break
		}
		i += j + 1
		ends = append(ends, i)
	}
	return ends
}

func startsImport(line string) bool {
	rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), "import")
	if !ok || rest == "" {
		return false
	}
	switch rest[0] {
	case ' ', '\t', '\r', '\n', '{', '\'', '"', '*':
		return true
	}
	return false
}
