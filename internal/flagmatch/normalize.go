package flagmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s into the form used for scoring: accents stripped, case folded,
// '-', '_' and '.' read as spaces, runs of whitespace collapsed to one space.
//
// "Côte_d'Ivoire" and "cote d'ivoire" normalize to the same string.
func Normalize(s string) string {
	// Transformers keep state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	out = strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '.':
			return ' '
		}
		return r
	}, out)
	return strings.Join(strings.Fields(out), " ")
}
