package jslex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTokenizeKeepsEveryByte(t *testing.T) {
	src := "// nav\r\nexport const links: LinkEntry[] = [\n" +
		"  { href: '/a', label: \"A\" }, /* gap */\n" +
		"  { href: `/b`, label: `B ${n}` },\n];\n"

	toks, err := Tokenize(src)
	require.NoError(t, err)

	var b strings.Builder
	for i, tok := range toks {
		assert.Equal(t, src[tok.Start:tok.End], tok.Text, "token %d", i)
		if i > 0 {
			assert.Equal(t, toks[i-1].End, tok.Start, "token %d", i)
		}
		b.WriteString(tok.Text)
	}
	assert.Equal(t, src, b.String())

	assert.Equal(t, Comment, toks[0].Kind)
	assert.Equal(t, Newline, toks[1].Kind)
	assert.Equal(t, "\r\n", toks[1].Text)
}

func TestTokenizeRegExpAndDivision(t *testing.T) {
	src := "export const isExternal = (h) => /^'http/.test(h);\nconst half = total / 2 / count;\nreturn /x/g;"
	toks, err := Tokenize(src)
	require.NoError(t, err)

	var regexps, slashes []string
	for _, tok := range toks {
		switch {
		case tok.Kind == RegExp:
			regexps = append(regexps, tok.Text)
		case tok.IsPunct("/"):
			slashes = append(slashes, tok.Text)
		}
	}
	assert.Equal(t, []string{"/^'http/", "/x/g"}, regexps)
	assert.Len(t, slashes, 2)
}

func TestTokenizeTemplatePieces(t *testing.T) {
	toks, err := Tokenize("`a${ {b: 1}.b }c`")
	require.NoError(t, err)
	sig := Significant(toks)
	require.NotEmpty(t, sig)
	assert.Equal(t, Template, sig[0].Kind)
	assert.Equal(t, "`a${", sig[0].Text)
	assert.Equal(t, Template, sig[len(sig)-1].Kind)
	assert.Equal(t, "}c`", sig[len(sig)-1].Text)
}

func TestTokenizeErrors(t *testing.T) {
	_, err := Tokenize("const s = 'open\n';")
	assert.Error(t, err)
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`'plain'`, "plain"},
		{`"It's"`, "It's"},
		{`'It\'s a \\ test'`, `It's a \ test`},
		{`'tab\there'`, "tab\there"},
		{`'\x41B\u{1F600}'`, "AB\U0001F600"},
		{"`multi\nline`", "multi\nline"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, err := Tokenize(tt.src)
			require.NoError(t, err)
			require.Len(t, toks, 1)
			got, err := Unquote(toks[0])
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	toks, err := Tokenize("`a${b}`")
	require.NoError(t, err)
	_, err = Unquote(toks[0])
	assert.ErrorIs(t, err, ErrInterpolated)

	_, err = Unquote(Token{Kind: Word, Text: "label"})
	assert.Error(t, err)
}

func TestTokenizeRoundTripProperty(t *testing.T) {
	fragments := []string{
		"export", " ", "const", "x", "=", "[", "]", "{", "}", "(", ")", ";", ",", "\n",
		"'a'", `"b"`, "`c`", "// note\n", "/* c */", "/", "/re/", "1", "h", ".test",
	}
	rapid.Check(t, func(t *rapid.T) {
		src := strings.Join(rapid.SliceOf(rapid.SampledFrom(fragments)).Draw(t, "parts"), "")
		toks, err := Tokenize(src)
		if err != nil {
			return
		}
		var b strings.Builder
		for _, tok := range toks {
			b.WriteString(tok.Text)
		}
		if b.String() != src {
			t.Fatalf("tokens do not rebuild the source:\n%q\n%q", src, b.String())
		}
	})
}
