package match

// Levenshtein returns the edit distance between a and b: the fewest single
// byte insertions, deletions and substitutions turning one into the other.
// Namespace names are ASCII, so bytes stand in for characters.
func Levenshtein(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return len(b)
	case b == "":
		return len(a)
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	// row[i] is the distance between a[:i] and the prefix of b seen so far.
	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(b); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(a); i++ {
			sub := diag
			if a[i-1] != b[j-1] {
				sub++
			}

			diag = row[i]
			row[i] = min(row[i]+1, row[i-1]+1, sub)
		}
	}

	return row[len(a)]
}

// LevenshteinNormalized scales the distance into a similarity in [0, 1],
// where 1 means equal: 1 - distance / max(len(a), len(b)).
func LevenshteinNormalized(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(a, b))/float64(longest)
}
