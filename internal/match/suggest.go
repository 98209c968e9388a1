package match

const (
	// minSuggestScore is the lowest similarity still offered as a suggestion.
	minSuggestScore = 0.5
	maxSuggestions  = 3
)

// Suggest returns up to three candidates most similar to name, best first.
// Exact matches and candidates below minSuggestScore are left out.
func Suggest(name string, candidates []string) []string {
	return Rank(name, candidates).AboveThreshold(minSuggestScore).Top(maxSuggestions).Names()
}
