// Package answer compares free-text input against accepted answers.
package answer

import "strings"

// minPartialLen is the shortest input allowed to take part in substring matching.
const minPartialLen = 3

// Normalize lowercases s and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsMatch reports whether input matches any accepted answer. A match is an exact
// normalized match, or containment in either direction once the input is at least
// minPartialLen bytes long, so "ot" does not match "ottawa" but "it was" matches "it".
func IsMatch(input string, accepted []string) bool {
	in := Normalize(input)
	for _, a := range accepted {
		a = Normalize(a)
		if in == a {
			return true
		}
		if len(in) >= minPartialLen && strings.Contains(a, in) {
			return true
		}
		if len(in) >= minPartialLen && strings.Contains(in, a) {
			return true
		}
	}
	return false
}
