// Package match reconciles external identities against the canonical
// directory using exact, structural, and fuzzy-similarity matching.
package match

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Similarity scores how alike two free-text names are, 0-100. Shortcut rules
// run in order, first match wins:
//
//	exact (after normalization)          -> 100
//	one contains the other               -> 90 (nicknames, shortened forms)
//	equal surnames and equal given names -> 95
//	equal surnames, given names differ   -> edit similarity of the given
//	                                        names, floored at 80
//	fallback                             -> edit similarity of the full names
func Similarity(a, b string) int {
	na := normalizeName(a)
	nb := normalizeName(b)

	if na == nb {
		return 100
	}

	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return 90
	}

	tokensA := strings.Fields(na)
	tokensB := strings.Fields(nb)
	if len(tokensA) >= 2 && len(tokensB) >= 2 {
		givenA, surnameA := tokensA[0], tokensA[len(tokensA)-1]
		givenB, surnameB := tokensB[0], tokensB[len(tokensB)-1]

		if surnameA == surnameB {
			if givenA == givenB {
				return 95
			}
			// Equal surnames with differing given names score at least 80;
			// this floor also covers the partial-initial case ("Bob" for
			// "Robert") where raw edit distance would punish the nickname.
			return max(80, editSimilarity(givenA, givenB))
		}
	}

	return editSimilarity(na, nb)
}

// editSimilarity converts Levenshtein distance to a 0-100 score:
// round((1 - distance/maxLen) * 100). Two empty strings score 100.
func editSimilarity(a, b string) int {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 100
	}
	distance := levenshteinDistance(a, b)
	return int(math.Round((1 - float64(distance)/float64(maxLen)) * 100))
}

// levenshteinDistance is the classic single-character insert/delete/
// substitute distance.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// diacriticStripper decomposes characters and removes combining marks, so
// "José" normalizes to "jose".
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lower-cases a name, folds diacritics, strips anything that
// is not a letter or a space, and collapses whitespace.
func normalizeName(name string) string {
	folded, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
