package categorize

import (
	"regexp"
	"strings"
)

var (
	reDish           = regexp.MustCompile(`\s+med\s+`)
	// A known base before sovs/sauce/dressing/mix names a plain ingredient,
	// written apart ("Salat mix") or as one compound ("Tomatsauce").
	reSauceExemption = regexp.MustCompile(`(?:^|[^\p{L}])(?:pizza|bernies|bearnaise|brun|chili|salat|tomat|krydderi)\s*(?:sovs|sauce|dressing|mix)(?:$|[^\p{L}])`)
)

// PreparedMealPenalty scores how strongly a product name looks like a
// finished dish rather than a raw food component, using default weights.
func PreparedMealPenalty(name string) int {
	return DefaultPenaltyWeights().Score(name)
}

// Score returns a penalty in [0, Strong]. Keyword tables are checked first,
// then the "X med Y" dish shape, then a graduated penalty for long names.
func (w PenaltyWeights) Score(name string) int {
	if strings.TrimSpace(name) == "" {
		return 0
	}
	s := lower(name)

	for _, indicator := range strongPreparedIndicators {
		if strings.Contains(s, indicator) {
			return w.Strong
		}
	}
	for _, indicator := range preparedIndicators {
		if !strings.Contains(s, indicator) {
			continue
		}
		if _, ok := exemptIngredientTerms[indicator]; ok {
			if s == indicator || reSauceExemption.MatchString(s) {
				continue
			}
		}
		return w.Regular
	}

	words := len(strings.Fields(s))
	if reDish.MatchString(s) && words >= w.DishMinWords {
		return w.DishPattern
	}
	if words >= w.ComplexMinWords {
		extra := (words - w.ComplexMinWords) * w.ComplexStep
		return w.ComplexBase + min(w.ComplexCap, extra)
	}
	return 0
}
