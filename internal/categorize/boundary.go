package categorize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const boundaryPunctuation = ".,;:!?()-/–—+&"

// AtWordBoundary reports whether the first occurrence of needle in haystack
// is delimited on both sides by the text edge, whitespace or punctuation.
// The comparison is case-insensitive; a missing needle is not at a boundary.
func AtWordBoundary(needle, haystack string) bool {
	n, h := lower(needle), lower(haystack)
	idx := strings.Index(h, n)
	if idx < 0 {
		return false
	}
	if idx > 0 {
		r, _ := utf8.DecodeLastRuneInString(h[:idx])
		if !isBoundaryRune(r) {
			return false
		}
	}
	if end := idx + len(n); end < len(h) {
		r, _ := utf8.DecodeRuneInString(h[end:])
		if !isBoundaryRune(r) {
			return false
		}
	}
	return true
}

func isBoundaryRune(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(boundaryPunctuation, r)
}
