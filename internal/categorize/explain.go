package categorize

// Explanation is a full scoring trace for one offer name.
type Explanation struct {
	Name      string                `json:"name"`
	Cleaned   string                `json:"cleaned"`
	HasEgg    bool                  `json:"hasEgg"`
	Fragments []FragmentExplanation `json:"fragments"`
	Result    CategorizedOffer      `json:"result"`
}

// FragmentExplanation lists every pair that produced at least one match
// for a single candidate product name.
type FragmentExplanation struct {
	Product         string      `json:"product"`
	PreparedPenalty int         `json:"preparedPenalty"`
	Pairs           []PairScore `json:"pairs"`
}

// Explain scores name the same way CategorizeOffer does and returns every
// intermediate pair score alongside the final result.
func (m *Matcher) Explain(name string, matchItemsLimit int) Explanation {
	cleaned := cleanName(name)
	egg := hasEgg(cleaned)

	exp := Explanation{
		Name:      name,
		Cleaned:   cleaned,
		HasEgg:    egg,
		Fragments: []FragmentExplanation{},
		Result:    m.CategorizeOffer(Offer{Name: name}, matchItemsLimit),
	}
	for _, frag := range m.fragments(cleaned) {
		fe := FragmentExplanation{Product: frag.text, PreparedPenalty: frag.penalty, Pairs: []PairScore{}}
		for _, cat := range m.categories {
			for _, item := range cat.items {
				if score, ok := m.scorePair(frag, cat.name, item, egg); ok {
					fe.Pairs = append(fe.Pairs, score)
				}
			}
		}
		exp.Fragments = append(exp.Fragments, fe)
	}
	return exp
}
