package tree

import "strings"

// MapDesc rewrites every class reference (L<name>;) of a JVM field or method
// descriptor through mapper. Malformed tails are copied unchanged.
func MapDesc(desc string, mapper func(string) string) string {
	if !strings.Contains(desc, "L") {
		return desc
	}

	var b strings.Builder

	b.Grow(len(desc))

	for i := 0; i < len(desc); i++ {
		ch := desc[i]
		if ch != 'L' {
			b.WriteByte(ch)
			continue
		}

		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			b.WriteString(desc[i:])
			break
		}

		b.WriteByte('L')
		b.WriteString(mapper(desc[i+1 : i+end]))
		b.WriteByte(';')

		i += end
	}

	return b.String()
}
