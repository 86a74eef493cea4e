package categorize

// UnknownCategory is the category assigned to offers no definition could claim.
const UnknownCategory = "Ukendt"

// Offer is one promotional line item from a retail catalog. JSON tags
// follow the field names used by the catalog export files.
type Offer struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Currency   string  `json:"valuta"`
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weight_unit"`
	Store      string  `json:"store"`
	ValidFrom  string  `json:"run_from"`
	ValidTo    string  `json:"run_till"`
}

// CategoryDefinition names a food category and the reference items that
// belong to it, e.g. {"Proteiner", ["kylling", "hakket oksekød"]}.
type CategoryDefinition struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// MatchCandidate is one (item, category) pair that cleared its acceptance
// threshold for an offer.
type MatchCandidate struct {
	Name     string `json:"name"`
	Accuracy int    `json:"accuracy"`
	Category string `json:"category"`
}

// CategorizedOffer is an Offer enriched with its ranked match candidates.
// Categories and MatchedItems are index-aligned; an unmatched offer carries
// Categories == ["Ukendt"], no matched items and a zero accuracy.
type CategorizedOffer struct {
	Offer
	Categories    []string         `json:"categories"`
	MatchedItems  []MatchCandidate `json:"matchedItems"`
	MatchAccuracy int              `json:"matchAccuracy"`
}

// PrimaryCategory returns the top-ranked category, or UnknownCategory.
func (o CategorizedOffer) PrimaryCategory() string {
	if len(o.Categories) == 0 {
		return UnknownCategory
	}
	return o.Categories[0]
}

// Matched reports whether at least one candidate was accepted.
func (o CategorizedOffer) Matched() bool {
	return len(o.MatchedItems) > 0
}

func unknownOffer(offer Offer) CategorizedOffer {
	return CategorizedOffer{
		Offer:        offer,
		Categories:   []string{UnknownCategory},
		MatchedItems: []MatchCandidate{},
	}
}
