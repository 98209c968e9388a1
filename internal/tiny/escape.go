package tiny

import (
	"errors"
	"strings"
)

var errBadEscape = errors.New("invalid escape sequence")

const escapable = "\\\n\r\x00\t"

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\x00", `\0`,
	"\t", `\t`,
)

func needsEscape(s string) bool {
	return strings.ContainsAny(s, escapable)
}

func escape(s string) string {
	if !needsEscape(s) {
		return s
	}

	return escaper.Replace(s)
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}

		if i+1 >= len(s) {
			return "", errBadEscape
		}

		i++

		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case 't':
			b.WriteByte('\t')
		default:
			return "", errBadEscape
		}
	}

	return b.String(), nil
}
