// Package game provides the outcome generators and payout evaluation for
// the three supported games: slots, roulette and crash.
package game

import (
	"strings"

	"github.com/memeseal/casino-core/internal/domain"
)

// Symbol represents a slot reel symbol.
type Symbol string

// Default symbol set. The set size is configuration, not a constant; these
// are only the shipped defaults.
const (
	SymbolTrump  Symbol = "trump"
	SymbolBiden  Symbol = "biden"
	SymbolHarris Symbol = "harris"
	SymbolObama  Symbol = "obama"
	SymbolPelosi Symbol = "pelosi"
	SymbolFrog   Symbol = "frog"
	SymbolRocket Symbol = "rocket"
)

// DefaultSymbols is the shipped seven-symbol reel strip.
func DefaultSymbols() []Symbol {
	return []Symbol{
		SymbolTrump, SymbolBiden, SymbolHarris, SymbolObama,
		SymbolPelosi, SymbolFrog, SymbolRocket,
	}
}

// PayTable maps slot outcomes to payout results. Lookup prefers the most
// specific pattern: an exact triple beats generic three-of-a-kind, which
// beats any-pair. Patterns are keyed by exact symbol identity first, so
// ties cannot occur.
type PayTable struct {
	triples      map[string]domain.PayoutResult
	threeOfAKind domain.PayoutResult
	pair         domain.PayoutResult
}

// TriplePayout is one exact-triple entry in a pay table configuration.
type TriplePayout struct {
	Symbol     Symbol
	Multiplier float64
	Label      string
}

// NewPayTable builds a pay table from exact-triple entries plus the generic
// three-of-a-kind and pair tiers.
func NewPayTable(triples []TriplePayout, threeOfAKind, pair domain.PayoutResult) *PayTable {
	t := &PayTable{
		triples:      make(map[string]domain.PayoutResult, len(triples)),
		threeOfAKind: threeOfAKind,
		pair:         pair,
	}
	for _, tp := range triples {
		key := tripleKey(tp.Symbol)
		t.triples[key] = domain.PayoutResult{Multiplier: tp.Multiplier, Label: tp.Label}
	}
	return t
}

// DefaultPayTable returns the shipped paytable.
func DefaultPayTable() *PayTable {
	return NewPayTable(
		[]TriplePayout{
			{Symbol: SymbolFrog, Multiplier: 100, Label: "TRIPLE PEPE JACKPOT"},
			{Symbol: SymbolRocket, Multiplier: 50, Label: "TO THE MOON"},
			{Symbol: SymbolTrump, Multiplier: 25, Label: "MAGA WINNER"},
		},
		domain.PayoutResult{Multiplier: 10, Label: "THREE OF A KIND"},
		domain.PayoutResult{Multiplier: 2, Label: "PAIR"},
	)
}

func tripleKey(s Symbol) string {
	return strings.Join([]string{string(s), string(s), string(s)}, "-")
}

// Evaluate resolves a reel triple against the table. Resolution order:
// exact jackpot triple, generic three-of-a-kind, any pair, no match.
// No side effects.
func (t *PayTable) Evaluate(reels []Symbol) domain.PayoutResult {
	if len(reels) != 3 {
		return domain.NoMatch
	}

	keys := make([]string, len(reels))
	for i, r := range reels {
		keys[i] = string(r)
	}

	if p, ok := t.triples[strings.Join(keys, "-")]; ok {
		return p
	}

	if reels[0] == reels[1] && reels[1] == reels[2] {
		return t.threeOfAKind
	}

	if reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2] {
		return t.pair
	}

	return domain.NoMatch
}
