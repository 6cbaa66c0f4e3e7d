package jslex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInterpolated is returned by Unquote for a template literal piece that
// opens or closes a ${…} substitution.
var ErrInterpolated = errors.New("template literal has substitutions")

// Unquote returns the value of a String token, or of a Template token
// without substitutions.
func Unquote(t Token) (string, error) {
	lit := t.Text
	switch t.Kind {
	case String:
	case Template:
		if len(lit) < 2 || lit[0] != '`' || lit[len(lit)-1] != '`' || strings.HasSuffix(lit, "${") {
			return "", ErrInterpolated
		}
	default:
		return "", fmt.Errorf("offset %d: not a string literal", t.Start)
	}
	if len(lit) < 2 {
		return "", fmt.Errorf("offset %d: truncated literal", t.Start)
	}

	body := lit[1 : len(lit)-1]
	if strings.IndexByte(body, '\\') < 0 {
		return body, nil
	}
	var b strings.Builder
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			b.WriteByte(body[i])
			i++
			continue
		}
		s, n, err := unescape(body[i:])
		if err != nil {
			return "", fmt.Errorf("offset %d: %w", t.Start+1+i, err)
		}
		b.WriteString(s)
		i += n
	}
	return b.String(), nil
}

// unescape decodes the escape sequence at the start of s and returns the
// text it stands for and its length.
func unescape(s string) (string, int, error) {
	if len(s) < 2 {
		return "", 0, errors.New("dangling backslash")
	}
	switch c := s[1]; c {
	case 'n':
		return "\n", 2, nil
	case 't':
		return "\t", 2, nil
	case 'r':
		return "\r", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'f':
		return "\f", 2, nil
	case 'v':
		return "\v", 2, nil
	case '0':
		return "\x00", 2, nil
	case '\n':
		return "", 2, nil
	case '\r':
		if len(s) > 2 && s[2] == '\n' {
			return "", 3, nil
		}
		return "", 2, nil
	case 'x':
		if len(s) < 4 {
			return "", 0, errors.New("short \\x escape")
		}
		v, err := strconv.ParseUint(s[2:4], 16, 8)
		if err != nil {
			return "", 0, errors.New("bad \\x escape")
		}
		return string(rune(v)), 4, nil
	case 'u':
		if len(s) > 2 && s[2] == '{' {
			end := strings.IndexByte(s, '}')
			if end < 0 {
				return "", 0, errors.New("unterminated \\u{} escape")
			}
			v, err := strconv.ParseUint(s[3:end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", 0, errors.New("bad \\u{} escape")
			}
			return string(rune(v)), end + 1, nil
		}
		if len(s) < 6 {
			return "", 0, errors.New("short \\u escape")
		}
		v, err := strconv.ParseUint(s[2:6], 16, 16)
		if err != nil {
			return "", 0, errors.New("bad \\u escape")
		}
		return string(rune(v)), 6, nil
	default:
		_, size := utf8.DecodeRuneInString(s[1:])
		return s[1 : 1+size], 1 + size, nil
	}
}
