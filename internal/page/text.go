package page

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	attrEscaper   = strings.NewReplacer(`\`, `\\`, "`", "\\`", `'`, `\'`)
	doubleEscaper = strings.NewReplacer(`"`, "&quot;")
	wordSeparator = strings.NewReplacer("-", " ", "_", " ")
)

// EscapeAttr escapes s for a single-quoted attribute value. Backslashes,
// single quotes and backticks are backslash-escaped.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// EscapeDoubleQuoted escapes s for a double-quoted attribute value.
func EscapeDoubleQuoted(s string) string {
	return doubleEscaper.Replace(s)
}

// TitleFromIdentity derives a display title from a page identity such as
// "travel/trips/amsterdam-2025.astro". Index files take their directory's
// name; the top-level index is "Home".
func TitleFromIdentity(identity string) string {
	identity = strings.TrimSuffix(strings.ReplaceAll(identity, `\`, "/"), "/")
	base := path.Base(identity)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "index" {
		name = path.Base(path.Dir(identity))
		if name == "." || name == "/" {
			return "Home"
		}
	}
	return cases.Title(language.English, cases.NoLower).String(wordSeparator.Replace(name))
}
