package game

import (
	"fmt"
	"math"
	"time"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/rng"
)

// CrashConfig holds the tunables of the crash game.
type CrashConfig struct {
	// HouseEdge is the fraction subtracted from fair odds (reference 0.03).
	HouseEdge float64 `yaml:"house_edge"`
	// GrowthRate is the exponent constant k in m(t) = exp(k*t).
	GrowthRate float64 `yaml:"growth_rate"`
	// MaxMultiplier caps the crash point's long right tail.
	MaxMultiplier float64 `yaml:"max_multiplier"`
}

// DefaultCrashConfig returns the shipped crash tunables.
func DefaultCrashConfig() CrashConfig {
	return CrashConfig{
		HouseEdge:     0.03,
		GrowthRate:    0.5,
		MaxMultiplier: 1000,
	}
}

// Validate rejects unusable crash configuration.
func (c CrashConfig) Validate() error {
	if c.HouseEdge <= 0 || c.HouseEdge >= 1 {
		return fmt.Errorf("%w: crash house edge %v outside (0, 1)", domain.ErrInvalidConfiguration, c.HouseEdge)
	}
	if c.GrowthRate <= 0 {
		return fmt.Errorf("%w: crash growth rate %v must be positive", domain.ErrInvalidConfiguration, c.GrowthRate)
	}
	if c.MaxMultiplier < 1 {
		return fmt.Errorf("%w: crash max multiplier %v below 1", domain.ErrInvalidConfiguration, c.MaxMultiplier)
	}
	return nil
}

// CrashOutcome is the terminal state of one crash round: the crash point
// plus the player's cash-out multiplier, zero if never cashed out.
type CrashOutcome struct {
	CrashPoint float64 `json:"crash_point"`
	CashedOut  float64 `json:"cashed_out,omitempty"`
}

// Summary returns a compact string form for settlement and game recall.
func (o *CrashOutcome) Summary() string {
	if o.CashedOut > 0 {
		return fmt.Sprintf("cashout@%.2fx/crash@%.2fx", o.CashedOut, o.CrashPoint)
	}
	return fmt.Sprintf("crash@%.2fx", o.CrashPoint)
}

// CrashGenerator draws crash points with the configured house edge.
type CrashGenerator struct {
	cfg CrashConfig
}

// NewCrashGenerator validates the configuration and creates a generator.
func NewCrashGenerator(cfg CrashConfig) (*CrashGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CrashGenerator{cfg: cfg}, nil
}

// Config returns the generator's tunables.
func (g *CrashGenerator) Config() CrashConfig {
	return g.cfg
}

// Generate draws a crash point c >= 1 from the long-tailed distribution
// c = max(1, 1/(1 - r*(1-e))). The (1-e) factor caps the effective support
// of r and encodes the house edge.
func (g *CrashGenerator) Generate(src rng.Source) (float64, error) {
	r, err := src.Float()
	if err != nil {
		return 0, fmt.Errorf("failed to draw crash point: %w", err)
	}
	c := 1.0 / (1.0 - r*(1.0-g.cfg.HouseEdge))
	if c < 1.0 {
		c = 1.0
	}
	if c > g.cfg.MaxMultiplier {
		c = g.cfg.MaxMultiplier
	}
	return c, nil
}

// MultiplierAt returns the live multiplier m(t) = exp(k*t) after elapsed
// flying time t.
func (g *CrashGenerator) MultiplierAt(elapsed time.Duration) float64 {
	return math.Exp(g.cfg.GrowthRate * elapsed.Seconds())
}
