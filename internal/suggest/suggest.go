// Package suggest finds the closest known name to a misspelled one, for
// "did you mean" hints in error messages and check reports.
package suggest

import (
	"strings"
	"unicode"
)

// DefaultThreshold is the minimum similarity Closest accepts.
const DefaultThreshold = 0.7

// Distance returns the edit distance between a and b, counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// Similarity returns 1 for names equal after normalization and approaches 0
// as they differ.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)

	longest := max(len([]rune(na)), len([]rune(nb)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(na, nb))/float64(longest)
}

// Normalize lower-cases s and drops separators, so that "VISA_SendPayout"
// and "visa-sendpayout" compare equal.
func Normalize(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '-' || r == '_' || r == '.' || unicode.IsSpace(r):
			continue
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// Closest returns the candidate most similar to name, if its similarity is
// at least threshold. Ties keep the earlier candidate.
func Closest(name string, candidates []string, threshold float64) (string, bool) {
	best, bestScore := "", -1.0

	for _, c := range candidates {
		score := Similarity(name, c)
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	if bestScore < threshold {
		return "", false
	}

	return best, true
}

// Hint returns " (did you mean X?)" for the closest candidate, or "".
func Hint(name string, candidates []string) string {
	c, ok := Closest(name, candidates, DefaultThreshold)
	if !ok || c == name {
		return ""
	}

	return " (did you mean " + c + "?)"
}
