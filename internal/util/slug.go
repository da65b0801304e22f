// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// slugFallback is returned when a name slugifies to nothing at all
// (empty input, whitespace, pure punctuation or emoji).
const slugFallback = "list"

// Matches any run of non-alphanumeric characters.
var nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a list name to a URL-safe slug.
// Slugs are unique per owner, not globally; collision handling
// lives in the list service.
//
// Rules:
//  1. Decompose unicode and drop non-ASCII runes
//  2. Lowercase
//  3. Replace runs of non-alphanumeric characters with a single hyphen
//  4. Trim leading/trailing hyphens
//  5. Empty result falls back to "list"
//
// Examples:
//
//	"Top Ten Snacks" → "top-ten-snacks"
//	"Top Ten!!"      → "top-ten"
//	"Café Crème"     → "cafe-creme"
//	"🔥🔥🔥"         → "list"
func Slugify(name string) string {
	// Decompose accented characters, then strip anything non-ASCII.
	s := norm.NFKD.String(name)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumericRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return slugFallback
	}
	return s
}
