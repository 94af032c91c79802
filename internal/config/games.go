package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/game"
)

// GameMath is the game-math file: symbol set, paytable, wheel weights and
// crash tunables. Invalid math is fatal at load time, never silently
// normalized.
type GameMath struct {
	Slots    SlotsMath        `yaml:"slots"`
	Roulette RouletteMath     `yaml:"roulette"`
	Crash    game.CrashConfig `yaml:"crash"`
}

// SlotsMath configures the slot machine.
type SlotsMath struct {
	Symbols []string      `yaml:"symbols"`
	Triples []TripleMath  `yaml:"triples"`
	Three   MultiplierRow `yaml:"three_of_a_kind"`
	Pair    MultiplierRow `yaml:"pair"`
}

// TripleMath is one exact-triple paytable row.
type TripleMath struct {
	Symbol     string  `yaml:"symbol"`
	Multiplier float64 `yaml:"multiplier"`
	Label      string  `yaml:"label"`
}

// MultiplierRow is a generic paytable tier.
type MultiplierRow struct {
	Multiplier float64 `yaml:"multiplier"`
	Label      string  `yaml:"label"`
}

// RouletteMath configures the weighted wheel.
type RouletteMath struct {
	Categories []game.Category `yaml:"categories"`
}

// DefaultGameMath returns the shipped math.
func DefaultGameMath() *GameMath {
	return &GameMath{
		Slots: SlotsMath{
			Symbols: symbolsToStrings(game.DefaultSymbols()),
			Triples: []TripleMath{
				{Symbol: string(game.SymbolFrog), Multiplier: 100, Label: "TRIPLE PEPE JACKPOT"},
				{Symbol: string(game.SymbolRocket), Multiplier: 50, Label: "TO THE MOON"},
				{Symbol: string(game.SymbolTrump), Multiplier: 25, Label: "MAGA WINNER"},
			},
			Three: MultiplierRow{Multiplier: 10, Label: "THREE OF A KIND"},
			Pair:  MultiplierRow{Multiplier: 2, Label: "PAIR"},
		},
		Roulette: RouletteMath{Categories: game.DefaultCategories()},
		Crash:    game.DefaultCrashConfig(),
	}
}

// LoadGameMath reads a YAML math file; an empty path returns the shipped
// defaults.
func LoadGameMath(path string) (*GameMath, error) {
	if path == "" {
		return DefaultGameMath(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game math file: %w", err)
	}

	var m GameMath
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse game math file: %w", err)
	}

	return &m, nil
}

// Build validates the math and constructs the three generators.
func (m *GameMath) Build() (*game.SlotsGenerator, *game.RouletteGenerator, *game.CrashGenerator, error) {
	symbols := make([]game.Symbol, len(m.Slots.Symbols))
	for i, s := range m.Slots.Symbols {
		symbols[i] = game.Symbol(s)
	}

	triples := make([]game.TriplePayout, len(m.Slots.Triples))
	for i, t := range m.Slots.Triples {
		triples[i] = game.TriplePayout{
			Symbol:     game.Symbol(t.Symbol),
			Multiplier: t.Multiplier,
			Label:      t.Label,
		}
	}

	table := game.NewPayTable(triples,
		payoutRow(m.Slots.Three), payoutRow(m.Slots.Pair))

	slots, err := game.NewSlotsGenerator(symbols, table)
	if err != nil {
		return nil, nil, nil, err
	}

	roulette, err := game.NewRouletteGenerator(m.Roulette.Categories)
	if err != nil {
		return nil, nil, nil, err
	}

	crash, err := game.NewCrashGenerator(m.Crash)
	if err != nil {
		return nil, nil, nil, err
	}

	return slots, roulette, crash, nil
}

func payoutRow(r MultiplierRow) domain.PayoutResult {
	return domain.PayoutResult{Multiplier: r.Multiplier, Label: r.Label}
}

func symbolsToStrings(symbols []game.Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}
