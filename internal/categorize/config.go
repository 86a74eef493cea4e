package categorize

import "fmt"

// Config holds the scoring constants of the matcher. DefaultConfig returns
// the values the category reference data was tuned against.
type Config struct {
	ShortItemThreshold     int
	LongItemThreshold      int
	ShortItemMaxLen        int
	MinTokenLen            int
	ShortWordPenalty       float64
	MaxShortWordPenalty    float64
	ProductWeight          float64
	ItemWeight             float64
	ContainedItemBonus     int
	ContainingProductBonus int
	EggBonus               int
	TieBucket              int
	Penalty                PenaltyWeights
}

// PenaltyWeights configures the prepared-meal penalty.
type PenaltyWeights struct {
	Strong          int
	Regular         int
	DishPattern     int
	ComplexBase     int
	ComplexStep     int
	ComplexCap      int
	ComplexMinWords int
	DishMinWords    int
}

// DefaultConfig returns the standard scoring constants.
func DefaultConfig() Config {
	return Config{
		ShortItemThreshold:     45,
		LongItemThreshold:      30,
		ShortItemMaxLen:        4,
		MinTokenLen:            3,
		ShortWordPenalty:       0.3,
		MaxShortWordPenalty:    0.7,
		ProductWeight:          0.7,
		ItemWeight:             0.3,
		ContainedItemBonus:     3,
		ContainingProductBonus: 2,
		EggBonus:               3,
		TieBucket:              10,
		Penalty:                DefaultPenaltyWeights(),
	}
}

// DefaultPenaltyWeights returns the standard prepared-meal penalty weights.
func DefaultPenaltyWeights() PenaltyWeights {
	return PenaltyWeights{
		Strong:          75,
		Regular:         50,
		DishPattern:     40,
		ComplexBase:     20,
		ComplexStep:     5,
		ComplexCap:      30,
		ComplexMinWords: 5,
		DishMinWords:    4,
	}
}

// Validate checks that every constant is within a usable range.
func (c Config) Validate() error {
	switch {
	case c.ShortItemThreshold < 0 || c.ShortItemThreshold > 100:
		return fmt.Errorf("%w: short item threshold %d outside 0-100", ErrInvalidConfig, c.ShortItemThreshold)
	case c.LongItemThreshold < 0 || c.LongItemThreshold > 100:
		return fmt.Errorf("%w: long item threshold %d outside 0-100", ErrInvalidConfig, c.LongItemThreshold)
	case c.ShortItemMaxLen < 0:
		return fmt.Errorf("%w: short item length must not be negative", ErrInvalidConfig)
	case c.MinTokenLen < 1:
		return fmt.Errorf("%w: minimum token length must be at least 1", ErrInvalidConfig)
	case c.ShortWordPenalty < 0 || c.MaxShortWordPenalty < 0 || c.MaxShortWordPenalty > 1:
		return fmt.Errorf("%w: short word penalty must be within 0-1", ErrInvalidConfig)
	case c.ProductWeight < 0 || c.ItemWeight < 0 || c.ProductWeight+c.ItemWeight > 1.0000001:
		return fmt.Errorf("%w: coverage weights must be non-negative and sum to at most 1", ErrInvalidConfig)
	case c.TieBucket < 1:
		return fmt.Errorf("%w: tie bucket must be at least 1", ErrInvalidConfig)
	}
	return c.Penalty.validate()
}

func (w PenaltyWeights) validate() error {
	for _, v := range []int{w.Strong, w.Regular, w.DishPattern, w.ComplexBase, w.ComplexStep, w.ComplexCap} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: penalty weight %d outside 0-100", ErrInvalidConfig, v)
		}
	}
	if w.ComplexMinWords < 1 || w.DishMinWords < 1 {
		return fmt.Errorf("%w: penalty word counts must be positive", ErrInvalidConfig)
	}
	return nil
}
