package categorize

import (
	"fmt"
	"math"
	"strings"
)

// Matcher scores offers against a fixed set of category definitions. It is
// immutable after construction and safe for concurrent use.
type Matcher struct {
	cfg        Config
	categories []compiledCategory
	items      int
}

type compiledCategory struct {
	name  string
	items []compiledItem
}

type compiledItem struct {
	name   string
	lower  string
	tokens []string
	short  bool
}

type fragment struct {
	text    string
	words   []string
	penalty int
}

// PairScore is the scoring breakdown for one product fragment against one
// category item.
type PairScore struct {
	Item             string  `json:"item"`
	Category         string  `json:"category"`
	MatchCount       int     `json:"matchCount"`
	ProductCoverage  float64 `json:"productCoverage"`
	ItemCoverage     float64 `json:"itemCoverage"`
	ShortWordPenalty float64 `json:"shortWordPenalty"`
	PreparedPenalty  int     `json:"preparedPenalty"`
	Accuracy         int     `json:"accuracy"`
	Threshold        int     `json:"threshold"`
	Accepted         bool    `json:"accepted"`
}

// NewMatcher compiles category definitions for scoring. Blank items are
// dropped; a category without items is kept but never matches.
func NewMatcher(defs []CategoryDefinition, cfg Config) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Matcher{cfg: cfg, categories: make([]compiledCategory, 0, len(defs))}
	for i, def := range defs {
		name := strings.TrimSpace(def.Category)
		if name == "" {
			return nil, fmt.Errorf("%w: category at index %d has no name", ErrInvalidInput, i)
		}
		cat := compiledCategory{name: name, items: make([]compiledItem, 0, len(def.Items))}
		for _, raw := range def.Items {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			low := lower(strings.TrimSpace(raw))
			cat.items = append(cat.items, compiledItem{
				name:   raw,
				lower:  low,
				tokens: strings.Fields(low),
				short:  runeLen(low) <= cfg.ShortItemMaxLen,
			})
		}
		m.items += len(cat.items)
		m.categories = append(m.categories, cat)
	}
	return m, nil
}

// Categorize is a convenience wrapper that builds a default Matcher and
// categorizes every offer in input order.
func Categorize(offers []Offer, defs []CategoryDefinition, matchItemsLimit int) ([]CategorizedOffer, error) {
	m, err := NewMatcher(defs, DefaultConfig())
	if err != nil {
		return nil, err
	}
	return m.Categorize(offers, matchItemsLimit), nil
}

// Config returns the scoring constants the matcher was built with.
func (m *Matcher) Config() Config { return m.cfg }

// CategoryCount returns the number of compiled categories.
func (m *Matcher) CategoryCount() int { return len(m.categories) }

// ItemCount returns the number of non-blank items across all categories.
func (m *Matcher) ItemCount() int { return m.items }

// Categorize transforms each offer independently. Output order mirrors input.
func (m *Matcher) Categorize(offers []Offer, matchItemsLimit int) []CategorizedOffer {
	out := make([]CategorizedOffer, len(offers))
	for i, offer := range offers {
		out[i] = m.CategorizeOffer(offer, matchItemsLimit)
	}
	return out
}

// CategorizeOffer classifies a single offer. A limit of 0 keeps every
// accepted candidate.
func (m *Matcher) CategorizeOffer(offer Offer, matchItemsLimit int) CategorizedOffer {
	cleaned := cleanName(offer.Name)
	if cleaned == "" {
		return unknownOffer(offer)
	}
	egg := hasEgg(cleaned)

	var set candidateSet
	for _, frag := range m.fragments(cleaned) {
		for _, cat := range m.categories {
			for _, item := range cat.items {
				score, ok := m.scorePair(frag, cat.name, item, egg)
				if !ok || !score.Accepted {
					continue
				}
				set.add(MatchCandidate{Name: item.name, Accuracy: score.Accuracy, Category: cat.name})
			}
		}
	}

	ranked := m.rank(set.items)
	if matchItemsLimit > 0 && len(ranked) > matchItemsLimit {
		ranked = ranked[:matchItemsLimit]
	}
	if len(ranked) == 0 {
		return unknownOffer(offer)
	}
	return CategorizedOffer{
		Offer:         offer,
		Categories:    []string{ranked[0].Category},
		MatchedItems:  ranked,
		MatchAccuracy: ranked[0].Accuracy,
	}
}

func (m *Matcher) fragments(cleaned string) []fragment {
	candidates := splitCandidates(cleaned)
	out := make([]fragment, 0, len(candidates))
	for _, c := range candidates {
		text := lower(c)
		out = append(out, fragment{
			text:    text,
			words:   strings.Fields(text),
			penalty: m.cfg.Penalty.Score(text),
		})
	}
	return out
}

// scorePair reports false when nothing in the pair matched at all.
func (m *Matcher) scorePair(frag fragment, category string, item compiledItem, egg bool) (PairScore, bool) {
	cfg := m.cfg
	var (
		matchCount   int
		productWords []string
		itemWords    []string
		shortPenalty float64
	)

	if egg && item.lower == "æg" {
		matchCount += cfg.EggBonus
		productWords = addUnique(productWords, "æg")
		itemWords = addUnique(itemWords, "æg")
	}

	for _, pw := range frag.words {
		pLen := runeLen(pw)
		if pLen < cfg.MinTokenLen {
			continue
		}
		for _, iw := range item.tokens {
			iLen := runeLen(iw)
			if iLen < cfg.MinTokenLen {
				continue
			}
			if (iLen <= cfg.ShortItemMaxLen || pLen <= cfg.ShortItemMaxLen) &&
				pw != iw && !strings.HasPrefix(pw, iw) && !strings.HasPrefix(iw, pw) {
				continue
			}
			if !Similar(pw, iw) {
				continue
			}
			if iLen <= cfg.ShortItemMaxLen {
				if !AtWordBoundary(iw, frag.text) {
					continue
				}
				shortPenalty += cfg.ShortWordPenalty
			}
			matchCount++
			productWords = addUnique(productWords, pw)
			itemWords = addUnique(itemWords, iw)
		}
	}

	switch {
	case strings.Contains(frag.text, item.lower):
		if !item.short || AtWordBoundary(item.lower, frag.text) {
			matchCount += cfg.ContainedItemBonus
			for _, iw := range item.tokens {
				itemWords = addUnique(itemWords, iw)
			}
		}
	case strings.Contains(item.lower, frag.text) && runeLen(frag.text) > cfg.ShortItemMaxLen:
		matchCount += cfg.ContainingProductBonus
		for _, pw := range frag.words {
			productWords = addUnique(productWords, pw)
		}
	}

	if matchCount == 0 {
		return PairScore{}, false
	}

	productCoverage := math.Min(1, float64(len(productWords))/float64(len(frag.words)))
	itemCoverage := math.Min(1, float64(len(itemWords))/float64(len(item.tokens)))
	accuracy := roundHalfUp((productCoverage*cfg.ProductWeight + itemCoverage*cfg.ItemWeight) * 100)
	if shortPenalty > 0 && len(itemWords) > 0 {
		accuracy = roundHalfUp(float64(accuracy) * (1 - math.Min(shortPenalty, cfg.MaxShortWordPenalty)))
	}
	accuracy = max(0, min(100, accuracy-frag.penalty))

	threshold := cfg.LongItemThreshold
	if item.short {
		threshold = cfg.ShortItemThreshold
	}

	return PairScore{
		Item:             item.name,
		Category:         category,
		MatchCount:       matchCount,
		ProductCoverage:  productCoverage,
		ItemCoverage:     itemCoverage,
		ShortWordPenalty: shortPenalty,
		PreparedPenalty:  frag.penalty,
		Accuracy:         accuracy,
		Threshold:        threshold,
		Accepted:         accuracy >= threshold,
	}, true
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func addUnique(set []string, word string) []string {
	for _, w := range set {
		if w == word {
			return set
		}
	}
	return append(set, word)
}
