package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/memeseal/casino-core/internal/domain"
)

func TestLoadGameMath(t *testing.T) {
	t.Run("EmptyPathUsesDefaults", func(t *testing.T) {
		m, err := LoadGameMath("")
		if err != nil {
			t.Fatalf("Failed to load defaults: %v", err)
		}
		if len(m.Slots.Symbols) != 7 {
			t.Errorf("Expected 7 symbols, got %d", len(m.Slots.Symbols))
		}
		if m.Crash.HouseEdge != 0.03 {
			t.Errorf("Expected house edge 0.03, got %v", m.Crash.HouseEdge)
		}
		if _, _, _, err := m.Build(); err != nil {
			t.Errorf("Default math failed to build: %v", err)
		}
	})

	t.Run("ParsesYAMLFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "math.yaml")
		data := `
slots:
  symbols: [cherry, lemon, seven]
  triples:
    - symbol: seven
      multiplier: 77
      label: TRIPLE SEVEN
  three_of_a_kind:
    multiplier: 10
    label: THREE OF A KIND
  pair:
    multiplier: 2
    label: PAIR
roulette:
  categories:
    - id: red
      label: RED
      weight: 0.5
      multiplier: 2
    - id: black
      label: BLACK
      weight: 0.5
      multiplier: 2
crash:
  house_edge: 0.05
  growth_rate: 0.7
  max_multiplier: 500
`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatalf("Failed to write math file: %v", err)
		}

		m, err := LoadGameMath(path)
		if err != nil {
			t.Fatalf("Failed to load math file: %v", err)
		}
		if len(m.Slots.Symbols) != 3 {
			t.Errorf("Expected 3 symbols, got %d", len(m.Slots.Symbols))
		}
		if m.Crash.GrowthRate != 0.7 {
			t.Errorf("Expected growth rate 0.7, got %v", m.Crash.GrowthRate)
		}

		slots, roulette, crash, err := m.Build()
		if err != nil {
			t.Fatalf("Failed to build generators: %v", err)
		}
		if slots == nil || roulette == nil || crash == nil {
			t.Fatal("Build returned nil generator")
		}
		if got := crash.Config().MaxMultiplier; got != 500 {
			t.Errorf("Expected max multiplier 500, got %v", got)
		}
	})

	t.Run("MissingFileErrors", func(t *testing.T) {
		if _, err := LoadGameMath("/nonexistent/math.yaml"); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("InvalidWeightsFailBuild", func(t *testing.T) {
		m := DefaultGameMath()
		m.Roulette.Categories[0].Weight = 0.9

		if _, _, _, err := m.Build(); !errors.Is(err, domain.ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("DuplicateSymbolsFailBuild", func(t *testing.T) {
		m := DefaultGameMath()
		m.Slots.Symbols = []string{"frog", "frog"}

		if _, _, _, err := m.Build(); !errors.Is(err, domain.ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})
}
