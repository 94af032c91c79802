package game

import (
	"fmt"
	"strings"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/rng"
)

// SlotsOutcome is the result of one spin: an ordered triple of symbols.
type SlotsOutcome struct {
	Reels []Symbol `json:"reels"`
}

// Summary returns a compact string form for settlement and game recall.
func (o *SlotsOutcome) Summary() string {
	parts := make([]string, len(o.Reels))
	for i, r := range o.Reels {
		parts[i] = string(r)
	}
	return strings.Join(parts, "-")
}

// SlotsGenerator draws slot outcomes from a configurable symbol set.
type SlotsGenerator struct {
	symbols []Symbol
	table   *PayTable
}

// NewSlotsGenerator creates a slots generator. The symbol set must be
// non-empty and free of duplicates, otherwise the paytable's exact-triple
// keying breaks.
func NewSlotsGenerator(symbols []Symbol, table *PayTable) (*SlotsGenerator, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: slots symbol set is empty", domain.ErrInvalidConfiguration)
	}
	seen := make(map[Symbol]bool, len(symbols))
	for _, s := range symbols {
		if seen[s] {
			return nil, fmt.Errorf("%w: duplicate slots symbol %q", domain.ErrInvalidConfiguration, s)
		}
		seen[s] = true
	}
	return &SlotsGenerator{symbols: symbols, table: table}, nil
}

// Generate draws three symbols, each an independent uniform draw over the
// symbol set. No biasing between reels.
func (g *SlotsGenerator) Generate(src rng.Source) (*SlotsOutcome, error) {
	reels := make([]Symbol, 3)
	for i := range reels {
		idx, err := src.Int(int64(len(g.symbols)))
		if err != nil {
			return nil, fmt.Errorf("failed to draw reel %d: %w", i, err)
		}
		reels[i] = g.symbols[idx]
	}
	return &SlotsOutcome{Reels: reels}, nil
}

// Evaluate resolves an outcome against the paytable.
func (g *SlotsGenerator) Evaluate(o *SlotsOutcome) domain.PayoutResult {
	return g.table.Evaluate(o.Reels)
}
