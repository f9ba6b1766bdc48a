// Package flagmatch picks the flag identifier that best matches a country name.
//
// Scores are the Ratcliff/Obershelp "matching blocks" ratio 2*M/T, where M is the
// number of characters in the matching blocks found by recursively taking the
// longest common substring and T is the total number of characters in both strings.
package flagmatch

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the similarity of a and b in [0, 1], comparing code points.
// Two empty strings are identical and score 1.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
