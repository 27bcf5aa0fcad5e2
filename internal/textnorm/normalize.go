// Package textnorm builds the comparison keys used for fuzzy stop-name lookup.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = runes.Predicate(func(r rune) bool {
	switch r {
	case '\'', '`', '´', '‘', '’':
		return true
	}
	return false
})

// Normalize decomposes s, drops combining marks and apostrophes, collapses
// whitespace and lowercases the result.
func Normalize(s string) string {
	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(apostrophes))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}

// Matches reports whether candidate contains query once both are normalized.
// An empty query matches nothing.
func Matches(candidate, query string) bool {
	q := Normalize(query)
	if q == "" {
		return false
	}
	return strings.Contains(Normalize(candidate), q)
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}
