// Package textnorm folds drug names, allergies and search queries into a comparable form:
// lowercase, trimmed, without diacritics ("Pénicilline" and "penicilline" compare equal).
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest token considered by token-based matching.
// Shorter tokens ("g", "iv") match almost anything.
const MinTokenLength = 3

// Fold lowercases s, trims it and strips combining marks
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		// Malformed input: fall back to plain lowercasing
		return strings.ToLower(s)
	}

	return strings.ToLower(folded)
}

// Contains reports whether the folded form of s contains the folded form of substr.
// An empty substr never matches.
func Contains(s, substr string) bool {
	needle := Fold(substr)
	if needle == "" {
		return false
	}
	return strings.Contains(Fold(s), needle)
}

// Tokens splits the folded form of s on anything that is not a letter or digit and
// drops tokens shorter than MinTokenLength.
func Tokens(s string) []string {
	fields := strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= MinTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
