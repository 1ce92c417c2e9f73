// Package search implements the token match shared by catalog and request lookups.
package search

import "strings"

// Tokens lower-cases q and splits it on whitespace.
func Tokens(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

// ContainsAll reports whether every token is a substring of text, ignoring case.
// No tokens matches everything.
func ContainsAll(text string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}
