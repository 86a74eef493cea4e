package categorize

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	reQuantity = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:kg|ml|cl|stk|g|l)\b`)
	rePercent  = regexp.MustCompile(`\b\d+(?:[.,]\d+)?(?:\s*-\s*\d+(?:[.,]\d+)?)?\s*%`)
	reSplit    = regexp.MustCompile(`(?i)\s+eller\s+|\s*,\s*|\s*&\s*|\s+og\s+|\s*\+\s*`)
	reEgg      = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:æg|ægs|skrabeæg|økoæg)(?:$|[^\p{L}\p{N}_])`)
)

var conjunctions = map[string]struct{}{
	"eller": {},
	"og":    {},
	",":     {},
	"&":     {},
	"+":     {},
}

// Normalize turns a raw offer name into the candidate product names that are
// scored independently. Quantities and percentages are removed, hyphenated
// continuations are expanded and the result is split on alternations.
//
//	Normalize("Kyllingebryst eller -lår, 500 g") // ["Kyllingebryst", "Kyllingebrystlår"]
func Normalize(name string) []string {
	return splitCandidates(cleanName(name))
}

// cleanName prepares a name for splitting: HTML entities decoded, NFC
// composed, measurements stripped, hyphen continuations expanded and
// whitespace collapsed.
func cleanName(name string) string {
	s := html.UnescapeString(name)
	s = norm.NFC.String(s)
	s = reQuantity.ReplaceAllString(s, "")
	s = rePercent.ReplaceAllString(s, "")
	return expandHyphenated(strings.Fields(s))
}

func splitCandidates(cleaned string) []string {
	parts := reSplit.Split(cleaned, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// expandHyphenated rewrites tokens like "-lår" by prepending the alphabetic
// root of the nearest earlier word that is neither a continuation nor a
// conjunction.
func expandHyphenated(words []string) string {
	for i, w := range words {
		if !isContinuation(w) {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			prev := words[j]
			if strings.HasPrefix(prev, "-") {
				continue
			}
			if _, ok := conjunctions[strings.ToLower(prev)]; ok {
				continue
			}
			if root := alphaRoot(prev); root != "" {
				words[i] = root + w[1:]
				break
			}
		}
	}
	return strings.Join(words, " ")
}

func isContinuation(w string) bool {
	if !strings.HasPrefix(w, "-") || len(w) < 2 {
		return false
	}
	for _, r := range w[1:] {
		return unicode.IsLetter(r)
	}
	return false
}

// alphaRoot returns the first run of letters in w.
func alphaRoot(w string) string {
	start := -1
	for i, r := range w {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return w[start:i]
		}
	}
	if start < 0 {
		return ""
	}
	return w[start:]
}

// hasEgg reports whether the cleaned offer name mentions eggs as a word.
func hasEgg(cleaned string) bool {
	return reEgg.MatchString(cleaned)
}

// danishLower pools Casers, which are not safe for concurrent use.
var danishLower = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Danish)
		return &c
	},
}

// lower applies Danish case mapping. Text with no upper-case runes is
// returned as is, which covers tokens that were lowered already.
func lower(s string) string {
	if !hasUpper(s) {
		return s
	}
	c := danishLower.Get().(*cases.Caser)
	defer danishLower.Put(c)
	return c.String(s)
}

func hasUpper(s string) bool {
	for _, r := range s {
		if r < utf8.RuneSelf {
			if 'A' <= r && r <= 'Z' {
				return true
			}
			continue
		}
		if unicode.ToLower(r) != r {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return len([]rune(s))
}
