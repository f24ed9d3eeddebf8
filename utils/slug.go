package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining marks: "plomería" -> "plomeria".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// CanonicalSlug normalizes a slug or display name into its canonical form:
// lowercase, accent-stripped, whitespace collapsed to single hyphens. The
// reference data boundary applies this once so no call site has to.
func CanonicalSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(StripAccents(s)))
	return strings.Join(strings.Fields(s), "-")
}
