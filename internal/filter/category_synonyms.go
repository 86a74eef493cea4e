package filter

import (
	"strings"

	"github.com/tayloree/foodcat/internal/categorize"
)

var categorySynonyms = map[string][]string{
	"Proteiner":                       {"protein", "proteins", "meat", "kød", "fish", "fisk", "poultry", "fjerkræ", "eggs", "æg"},
	"Bageri":                          {"bakery", "bread", "brød", "bager"},
	"Kulhydrater":                     {"carbs", "carbohydrates", "kulhydrat", "starch", "grains"},
	"Grøntsager":                      {"vegetables", "veg", "veggies", "grønt", "grøntsag"},
	"Frugter":                         {"fruit", "fruits", "frugt"},
	"Fedtstoffer & Olier":             {"fats", "oils", "fat", "oil", "fedt", "olie", "fedtstoffer"},
	"Tilsætningsstoffer & Krydderier": {"spices", "spice", "additives", "seasoning", "krydderier", "krydderi"},
	categorize.UnknownCategory:        {"unknown", "other", "uncategorized"},
}

// ResolveCategory maps a user alias such as "meat" or "grøntsag" to its
// canonical category name. Unrecognized input is returned trimmed.
func ResolveCategory(alias string) string {
	if group := resolveCategoryGroup(alias); group != "" {
		return group
	}
	return strings.TrimSpace(alias)
}

type categoryMatcher struct {
	exactAliases []string
	normalized   map[string]struct{}
}

func newCategoryMatcher(wanted string) categoryMatcher {
	aliases := categoryAliasList(wanted)
	if len(aliases) == 0 {
		return categoryMatcher{}
	}

	normalized := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		normalized[normalizeCategory(alias)] = struct{}{}
	}

	return categoryMatcher{
		exactAliases: aliases,
		normalized:   normalized,
	}
}

func categoryAliasList(wanted string) []string {
	raw := strings.TrimSpace(wanted)
	group := resolveCategoryGroup(wanted)
	if raw == "" && group == "" {
		return nil
	}

	out := make([]string, 0, 2+len(categorySynonyms[group]))
	addAlias := func(alias string) {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			return
		}
		for _, existing := range out {
			if strings.EqualFold(existing, alias) {
				return
			}
		}
		out = append(out, alias)
	}

	addAlias(raw)
	addAlias(group)
	for _, s := range categorySynonyms[group] {
		addAlias(s)
	}
	return out
}

// resolveCategoryGroup returns the canonical name for wanted, or "".
func resolveCategoryGroup(wanted string) string {
	norm := normalizeCategory(wanted)
	if norm == "" {
		return ""
	}

	for key, synonyms := range categorySynonyms {
		if normalizeCategory(key) == norm {
			return key
		}
		for _, s := range synonyms {
			if normalizeCategory(s) == norm {
				return key
			}
		}
	}
	return ""
}

func (m categoryMatcher) matches(category string) bool {
	trimmed := strings.TrimSpace(category)
	for _, alias := range m.exactAliases {
		if strings.EqualFold(trimmed, alias) {
			return true
		}
	}

	// Without separators the normalized form equals the lowered input, which
	// the exact pass above already compared.
	if !strings.ContainsAny(trimmed, "-_& ") {
		return false
	}

	_, ok := m.normalized[normalizeCategory(trimmed)]
	return ok
}

func normalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("_", " ", "-", " ", "&", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	switch {
	case len(s) > 4 && strings.HasSuffix(s, "ies"):
		s = strings.TrimSuffix(s, "ies") + "y"
	case len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		s = strings.TrimSuffix(s, "s")
	}
	return s
}
