package filter

import (
	"html"
	"strings"

	"github.com/tayloree/foodcat/internal/categorize"
)

// Reason explains why the post-filter dropped an offer. The zero value
// means the offer was kept.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonUnknown      Reason = "unknown_category"
	ReasonBeverage     Reason = "beverage"
	ReasonLowAccuracy  Reason = "low_accuracy"
	ReasonNonFood      Reason = "non_food"
	ReasonPreparedMeal Reason = "prepared_meal"
	ReasonDishPattern  Reason = "dish_pattern"
	ReasonComplexName  Reason = "complex_name"
)

// Options holds post-filter thresholds and result selection criteria.
type Options struct {
	AccuracyThreshold int
	MatchItemsLimit   int

	// Zero values fall back to 40, 70 and 5.
	PenaltyCutoff    int
	HighConfidence   int
	ComplexWordCount int

	// KeepRejected skips the rejection rules and only applies selection.
	KeepRejected bool

	Category string
	Store    string
	Query    string
	Sort     string
	Limit    int
}

const (
	defaultPenaltyCutoff    = 40
	defaultHighConfidence   = 70
	defaultComplexWordCount = 5
)

func (o Options) withDefaults() Options {
	if o.PenaltyCutoff <= 0 {
		o.PenaltyCutoff = defaultPenaltyCutoff
	}
	if o.HighConfidence <= 0 {
		o.HighConfidence = defaultHighConfidence
	}
	if o.ComplexWordCount <= 0 {
		o.ComplexWordCount = defaultComplexWordCount
	}
	return o
}

// PostFilter drops offers that are not food components and trims each
// survivor's matched items to matchItemsLimit when it is positive. The
// result is an order-preserving subset of offers.
func PostFilter(offers []categorize.CategorizedOffer, accuracyThreshold, matchItemsLimit int) []categorize.CategorizedOffer {
	return Apply(offers, Options{AccuracyThreshold: accuracyThreshold, MatchItemsLimit: matchItemsLimit})
}

// Apply runs the rejection rules, then narrows by category, store and
// query, sorts, and finally truncates to Limit.
func Apply(offers []categorize.CategorizedOffer, opts Options) []categorize.CategorizedOffer {
	opts = opts.withDefaults()
	result := offers

	if !opts.KeepRejected {
		result = where(result, func(o categorize.CategorizedOffer) bool {
			return RejectReason(o, opts) == ReasonNone
		})
	}

	if opts.Category != "" {
		matcher := newCategoryMatcher(opts.Category)
		result = where(result, func(o categorize.CategorizedOffer) bool {
			return matcher.matches(o.PrimaryCategory())
		})
	}

	if opts.Store != "" {
		store := strings.ToLower(opts.Store)
		result = where(result, func(o categorize.CategorizedOffer) bool {
			return strings.Contains(strings.ToLower(o.Store), store)
		})
	}

	if opts.Query != "" {
		q := strings.ToLower(opts.Query)
		result = where(result, func(o categorize.CategorizedOffer) bool {
			return strings.Contains(strings.ToLower(CleanText(o.Name)), q)
		})
	}

	if opts.MatchItemsLimit > 0 {
		result = trimMatches(result, opts.MatchItemsLimit)
	}

	if mode := normalizeSortMode(opts.Sort); mode != "" {
		result = Sort(result, mode)
	}

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}

	if result == nil {
		return []categorize.CategorizedOffer{}
	}
	return result
}

// RejectReason returns the first rule that rejects the offer, or ReasonNone.
func RejectReason(o categorize.CategorizedOffer, opts Options) Reason {
	opts = opts.withDefaults()
	name := strings.ToLower(CleanText(o.Name))
	unknown := o.PrimaryCategory() == categorize.UnknownCategory

	switch {
	case unknown && (reAlcohol.MatchString(name) || reBeverage.MatchString(name)):
		return ReasonBeverage
	case unknown:
		return ReasonUnknown
	case o.MatchAccuracy < opts.AccuracyThreshold:
		return ReasonLowAccuracy
	case isNonFood(name):
		return ReasonNonFood
	case categorize.PreparedMealPenalty(name) > opts.PenaltyCutoff:
		return ReasonPreparedMeal
	case reMedPattern.MatchString(name) && o.MatchAccuracy < opts.HighConfidence:
		return ReasonDishPattern
	case len(strings.Fields(name)) >= opts.ComplexWordCount && o.MatchAccuracy < opts.HighConfidence:
		return ReasonComplexName
	}
	return ReasonNone
}

// Rejections counts how many offers each rule removed.
func Rejections(offers []categorize.CategorizedOffer, opts Options) map[Reason]int {
	out := make(map[Reason]int)
	for _, o := range offers {
		if r := RejectReason(o, opts); r != ReasonNone {
			out[r]++
		}
	}
	return out
}

func isNonFood(name string) bool {
	for _, phrase := range foodPhrases {
		name = strings.ReplaceAll(name, phrase, " ")
	}
	for _, kw := range nonFoodKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func trimMatches(offers []categorize.CategorizedOffer, limit int) []categorize.CategorizedOffer {
	out := make([]categorize.CategorizedOffer, len(offers))
	for i, o := range offers {
		if len(o.MatchedItems) > limit {
			o.MatchedItems = o.MatchedItems[:limit:limit]
		}
		out[i] = o
	}
	return out
}

// CleanText unescapes HTML entities and normalizes whitespace.
func CleanText(s string) string {
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func where(offers []categorize.CategorizedOffer, fn func(categorize.CategorizedOffer) bool) []categorize.CategorizedOffer {
	var result []categorize.CategorizedOffer
	for _, o := range offers {
		if fn(o) {
			result = append(result, o)
		}
	}
	return result
}
