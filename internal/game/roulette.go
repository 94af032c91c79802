package game

import (
	"fmt"
	"math"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/rng"
)

// weightTolerance is the floating tolerance for the weight-sum check.
const weightTolerance = 1e-9

// Category is one roulette wheel segment with its sampling weight and the
// multiplier paid when a bet on it wins.
type Category struct {
	ID         string  `json:"id" yaml:"id"`
	Label      string  `json:"label" yaml:"label"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// RouletteOutcome is the winning category of one spin.
type RouletteOutcome struct {
	Winner Category `json:"winner"`
}

// Summary returns a compact string form for settlement and game recall.
func (o *RouletteOutcome) Summary() string {
	return o.Winner.ID
}

// RouletteGenerator draws one winning category using weighted sampling.
// The weight vector is configuration so the house edge is tunable without
// code change.
type RouletteGenerator struct {
	categories []Category
}

// NewRouletteGenerator validates the category configuration. Weights must
// sum to 1 within floating tolerance; the configuration is rejected
// otherwise, never silently normalized.
func NewRouletteGenerator(categories []Category) (*RouletteGenerator, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: roulette has no categories", domain.ErrInvalidConfiguration)
	}

	var sum float64
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: roulette category missing id", domain.ErrInvalidConfiguration)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate roulette category %q", domain.ErrInvalidConfiguration, c.ID)
		}
		seen[c.ID] = true
		if c.Weight <= 0 {
			return nil, fmt.Errorf("%w: roulette category %q has non-positive weight %v",
				domain.ErrInvalidConfiguration, c.ID, c.Weight)
		}
		if c.Multiplier <= 0 {
			return nil, fmt.Errorf("%w: roulette category %q has non-positive multiplier %v",
				domain.ErrInvalidConfiguration, c.ID, c.Multiplier)
		}
		sum += c.Weight
	}

	if math.Abs(sum-1.0) > weightTolerance {
		return nil, fmt.Errorf("%w: roulette weights sum to %v, want 1", domain.ErrInvalidConfiguration, sum)
	}

	return &RouletteGenerator{categories: categories}, nil
}

// DefaultCategories is the shipped 45/45/10 wheel.
func DefaultCategories() []Category {
	return []Category{
		{ID: "trump", Label: "TRUMP", Weight: 0.45, Multiplier: 2},
		{ID: "harris", Label: "HARRIS", Weight: 0.45, Multiplier: 2},
		{ID: "pepe", Label: "PEPE", Weight: 0.10, Multiplier: 14},
	}
}

// Categories returns the configured wheel segments.
func (g *RouletteGenerator) Categories() []Category {
	return g.categories
}

// Category looks up a segment by id.
func (g *RouletteGenerator) Category(id string) (Category, bool) {
	for _, c := range g.categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Generate draws the winning category by walking the cumulative weights.
func (g *RouletteGenerator) Generate(src rng.Source) (*RouletteOutcome, error) {
	r, err := src.Float()
	if err != nil {
		return nil, fmt.Errorf("failed to draw roulette outcome: %w", err)
	}

	var cumulative float64
	for _, c := range g.categories {
		cumulative += c.Weight
		if r < cumulative {
			return &RouletteOutcome{Winner: c}, nil
		}
	}

	// Weight sum is 1 within tolerance; a draw just under 1.0 can still
	// fall past the last boundary.
	return &RouletteOutcome{Winner: g.categories[len(g.categories)-1]}, nil
}

// Evaluate resolves the player's pick against the winning category.
func (g *RouletteGenerator) Evaluate(pick string, o *RouletteOutcome) domain.PayoutResult {
	if pick == o.Winner.ID {
		return domain.PayoutResult{
			Multiplier: o.Winner.Multiplier,
			Label:      o.Winner.Label + " WINS",
		}
	}
	return domain.PayoutResult{Multiplier: 0, Label: o.Winner.Label + " WINS - LOSE"}
}
