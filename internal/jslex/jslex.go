// Package jslex splits JavaScript and TypeScript source into tokens that
// carry their exact text and byte offsets. Whitespace, line breaks and
// comments are kept as tokens, so joining every token's Text gives back the
// source and callers can splice edits at token boundaries.
package jslex

import (
	"fmt"
	"io"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Kind classifies a token.
type Kind int

const (
	Space    Kind = iota // spaces and tabs
	Newline              // \n, \r or \r\n
	Comment              // line or block comment
	String               // quoted string literal
	Template             // template literal, or one piece of an interpolated one
	RegExp               // regular expression literal
	Number
	Word // identifier or keyword
	Punct
)

// Token is one lexical token of the source.
type Token struct {
	Kind  Kind
	Text  string
	Start int // byte offset of the first character
	End   int // byte offset just past the last character
}

// Trivia reports whether the token is whitespace, a line break or a comment.
func (t Token) Trivia() bool {
	return t.Kind == Space || t.Kind == Newline || t.Kind == Comment
}

// IsPunct reports whether the token is the punctuator p.
func (t Token) IsPunct(p string) bool {
	return t.Kind == Punct && t.Text == p
}

// IsWord reports whether the token is one of the given identifiers or
// keywords.
func (t Token) IsWord(words ...string) bool {
	if t.Kind != Word {
		return false
	}
	for _, w := range words {
		if t.Text == w {
			return true
		}
	}
	return false
}

// Tokenize lexes src completely. A '/' is read as the start of a regular
// expression when the previous significant token cannot end an operand.
func Tokenize(src string) ([]Token, error) {
	l := js.NewLexer(parse.NewInputString(src))
	var (
		toks []Token
		last *Token // previous significant token
		pos  int
	)
	for {
		tt, data := l.Next()
		if (tt == js.DivToken || tt == js.DivEqToken) && regexpAllowed(last) {
			tt, data = l.RegExp()
		}
		if tt == js.ErrorToken {
			if err := l.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("offset %d: %w", pos, err)
			}
			if pos != len(src) {
				return nil, fmt.Errorf("offset %d: unexpected input", pos)
			}
			return toks, nil
		}

		tok := Token{Kind: kindOf(tt, data), Text: string(data), Start: pos, End: pos + len(data)}
		pos = tok.End
		toks = append(toks, tok)
		if !tok.Trivia() {
			last = &tok
		}
	}
}

// Significant returns toks without trivia.
func Significant(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if !t.Trivia() {
			out = append(out, t)
		}
	}
	return out
}

func kindOf(tt js.TokenType, data []byte) Kind {
	switch tt {
	case js.WhitespaceToken:
		return Space
	case js.LineTerminatorToken:
		return Newline
	case js.CommentToken, js.CommentLineTerminatorToken:
		return Comment
	case js.StringToken:
		return String
	case js.TemplateToken, js.TemplateStartToken, js.TemplateMiddleToken, js.TemplateEndToken:
		return Template
	case js.RegExpToken:
		return RegExp
	}
	if len(data) == 0 {
		return Punct
	}
	switch c := data[0]; {
	case c >= '0' && c <= '9', c == '.' && len(data) > 1 && data[1] >= '0' && data[1] <= '9':
		return Number
	case c == '_' || c == '$' || c == '#' || c >= 0x80 || (c|0x20 >= 'a' && c|0x20 <= 'z'):
		return Word
	}
	return Punct
}

// keywords after which an expression, and so a regular expression, may start.
var operandKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

func regexpAllowed(last *Token) bool {
	if last == nil {
		return true
	}
	switch last.Kind {
	case String, RegExp, Number:
		return false
	case Template:
		// Only an open interpolation leaves room for an operand.
		return len(last.Text) >= 2 && last.Text[len(last.Text)-2:] == "${"
	case Word:
		return operandKeywords[last.Text]
	case Punct:
		return last.Text != ")" && last.Text != "]" && last.Text != "}"
	}
	return true
}
