package filter

import (
	"sort"

	"github.com/tayloree/foodcat/internal/categorize"
)

// CategoryShare is one row of a category distribution.
type CategoryShare struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// Summary describes a batch of categorized offers.
type Summary struct {
	Total           int             `json:"total"`
	Matched         int             `json:"matched"`
	Unknown         int             `json:"unknown"`
	AverageAccuracy float64         `json:"averageAccuracy"`
	Categories      []CategoryShare `json:"categories"`
}

// Categories returns a map of primary category to offer count.
func Categories(offers []categorize.CategorizedOffer) map[string]int {
	cats := make(map[string]int)
	for _, o := range offers {
		cats[o.PrimaryCategory()]++
	}
	return cats
}

// Stats summarizes the category distribution of offers. The average
// accuracy covers matched offers only. Categories are ordered by count
// descending, then by name.
func Stats(offers []categorize.CategorizedOffer) Summary {
	s := Summary{Total: len(offers), Categories: []CategoryShare{}}

	accuracySum := 0
	for _, o := range offers {
		if o.Matched() {
			s.Matched++
			accuracySum += o.MatchAccuracy
		} else {
			s.Unknown++
		}
	}
	if s.Matched > 0 {
		s.AverageAccuracy = float64(accuracySum) / float64(s.Matched)
	}

	for name, count := range Categories(offers) {
		share := CategoryShare{Category: name, Count: count}
		if s.Total > 0 {
			share.Percent = float64(count) * 100 / float64(s.Total)
		}
		s.Categories = append(s.Categories, share)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i], s.Categories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	return s
}
