package categorize

import (
	"regexp"
	"strings"
)

var reEggForm = regexp.MustCompile(`^æg(?:s|ene)?$`)

// danishSuffixes are the inflection endings accepted between two words.
var danishSuffixes = []string{"er", "e", "r"}

// Similar reports whether two words are likely the same Danish food word.
// The rules run in order and the first applicable one decides.
func Similar(a, b string) bool {
	a, b = lower(a), lower(b)
	la, lb := runeLen(a), runeLen(b)

	if la < 3 || lb < 3 {
		return a == b
	}
	if a == b {
		return true
	}
	if blocked(a, b) {
		return false
	}
	if (a == "æg" && reEggForm.MatchString(b)) || (b == "æg" && reEggForm.MatchString(a)) {
		return true
	}

	if la <= 4 || lb <= 4 {
		shorter, longer := a, b
		if lb < la {
			shorter, longer = b, a
		}
		return strings.HasPrefix(longer, shorter) || strings.HasSuffix(longer, shorter)
	}

	for _, suffix := range danishSuffixes {
		if a+suffix == b || b+suffix == a {
			return true
		}
	}

	ra, rb := []rune(a), []rune(b)
	return string(ra[:la-2]) == string(rb[:lb-2])
}

func blocked(a, b string) bool {
	for _, pair := range similarityBlocklist {
		x, y := pair[0], pair[1]
		if (strings.Contains(a, x) && strings.Contains(b, y)) ||
			(strings.Contains(a, y) && strings.Contains(b, x)) {
			return true
		}
	}
	return false
}
