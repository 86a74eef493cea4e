package categorize

import "sort"

// candidateSet accumulates accepted candidates keyed by (item, category),
// keeping the highest accuracy seen and the first-seen position.
type candidateSet struct {
	items []MatchCandidate
	index map[candidateKey]int
}

type candidateKey struct {
	name     string
	category string
}

func (s *candidateSet) add(c MatchCandidate) {
	if s.index == nil {
		s.index = make(map[candidateKey]int)
	}
	key := candidateKey{name: c.Name, category: c.Category}
	if i, ok := s.index[key]; ok {
		if c.Accuracy > s.items[i].Accuracy {
			s.items[i].Accuracy = c.Accuracy
		}
		return
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, c)
}

// rank orders candidates by accuracy bucket, then category priority, then
// exact accuracy. Equal keys keep first-seen order.
func (m *Matcher) rank(candidates []MatchCandidate) []MatchCandidate {
	bucket := m.cfg.TieBucket
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if ba, bb := a.Accuracy/bucket, b.Accuracy/bucket; ba != bb {
			return ba > bb
		}
		if pa, pb := Priority(a.Category), Priority(b.Category); pa != pb {
			return pa > pb
		}
		return a.Accuracy > b.Accuracy
	})
	return candidates
}
