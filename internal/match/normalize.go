package match

import (
	"strings"
)

// Normalize folds a namespace or identifier for fuzzy matching: it is
// lower-cased and separators (_, -, spaces) are removed, so "Named_V2" and
// "named-v2" compare equal.
func Normalize(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
