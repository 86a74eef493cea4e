package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/tayloree/foodcat/internal/categorize"
)

// Sort modes accepted by Sort.
const (
	SortAccuracy = "accuracy"
	SortPrice    = "price"
	SortEnding   = "ending"
	SortName     = "name"
)

// Sort returns a stably sorted copy of offers. Unknown modes fall back to
// accuracy.
func Sort(offers []categorize.CategorizedOffer, mode string) []categorize.CategorizedOffer {
	out := make([]categorize.CategorizedOffer, len(offers))
	copy(out, offers)

	switch normalizeSortMode(mode) {
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortEnding:
		sort.SliceStable(out, func(i, j int) bool {
			ti, okI := parseOfferDate(out[i].ValidTo)
			tj, okJ := parseOfferDate(out[j].ValidTo)
			switch {
			case okI && okJ:
				return ti.Before(tj)
			case okI != okJ:
				return okI
			default:
				return false
			}
		})
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].MatchAccuracy > out[j].MatchAccuracy })
	}
	return out
}

// ValidSortMode reports whether raw names a known sort mode.
func ValidSortMode(raw string) bool {
	return strings.TrimSpace(raw) == "" || normalizeSortMode(raw) != ""
}

func normalizeSortMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accuracy", "confidence", "score":
		return SortAccuracy
	case "price", "cheapest":
		return SortPrice
	case "ending", "end", "expiry", "expiration":
		return SortEnding
	case "name", "alpha", "alphabetical":
		return SortName
	default:
		return ""
	}
}

func parseOfferDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"02-01-2006",
		"02.01.2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
