package match

import (
	"sort"
)

// Candidate is a possible intended name with its similarity to the name that
// was asked for.
type Candidate struct {
	Name string

	// Score is the better of the raw and normalized Levenshtein similarity
	// (0-1, higher is better).
	Score float64
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank scores every candidate against name and returns them best first.
// Candidates equal to name are skipped.
func Rank(name string, candidates []string) CandidateList {
	var list CandidateList

	norm := Normalize(name)

	for _, c := range candidates {
		if c == name {
			continue
		}

		score := max(LevenshteinNormalized(name, c), LevenshteinNormalized(norm, Normalize(c)))

		list = append(list, Candidate{Name: c, Score: score})
	}

	sort.Sort(list)

	return list
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Names returns the candidate names in order.
func (c CandidateList) Names() []string {
	names := make([]string, 0, len(c))
	for _, cand := range c {
		names = append(names, cand.Name)
	}

	return names
}
