package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	exactScore     = 1.0
	substringScore = 0.9
)

// Similarity scores how close a and b are, in [0, 1]. Comparison is case
// insensitive on trimmed strings. The first applicable rule wins: equality
// scores 1.0, containment in either direction scores 0.9, otherwise the
// score is 1 - editDistance/maxRuneLength.
//
// An empty string is not treated as contained in anything, so comparing it
// with a non-empty string falls through to edit distance and scores 0.
func Similarity(a, b string) float64 {
	return similarity(fold(a), fold(b))
}

// similarity expects already folded input.
func similarity(a, b string) float64 {
	if a == b {
		return exactScore
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return substringScore
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return exactScore
	}

	score := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
	return min(max(score, 0), 1)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
