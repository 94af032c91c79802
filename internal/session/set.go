package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/game"
	"github.com/memeseal/casino-core/internal/history"
	"github.com/memeseal/casino-core/internal/ledger"
	"github.com/memeseal/casino-core/internal/rng"
)

// SetConfig wires one player's session set.
type SetConfig struct {
	UserID   string
	Bank     Bank
	Source   rng.Source
	Recorder history.Recorder
	Logger   *slog.Logger

	MinBet domain.Chips
	MaxBet domain.Chips

	Slots    *game.SlotsGenerator
	Roulette *game.RouletteGenerator
	Crash    *game.CrashGenerator

	// CrashTick is the live clock period; CrashSettleTimeout bounds the
	// settlement call made when a round concludes.
	CrashTick          time.Duration
	CrashSettleTimeout time.Duration

	// Now is the clock used by the crash round, injectable for tests.
	Now func() time.Time
}

// Set is the per-player session context: one shared ledger plus the three
// game controllers. The ledger is the single writer of the balance; the
// settle mutex keeps reconciles for this player from interleaving.
type Set struct {
	UserID string
	Ledger *ledger.Ledger

	Slots    *Slots
	Roulette *Roulette
	Crash    *Crash
}

// NewSet builds a session set. Generator configuration has already been
// validated by the game package constructors.
func NewSet(cfg SetConfig) (*Set, error) {
	if cfg.UserID == "" {
		return nil, fmt.Errorf("%w: session user id is empty", domain.ErrInvalidConfiguration)
	}
	if cfg.Bank == nil {
		return nil, fmt.Errorf("%w: session has no bank client", domain.ErrInvalidConfiguration)
	}
	if cfg.Slots == nil || cfg.Roulette == nil || cfg.Crash == nil {
		return nil, fmt.Errorf("%w: session requires all three generators", domain.ErrInvalidConfiguration)
	}
	if cfg.Source == nil {
		cfg.Source = rng.New()
	}
	if cfg.CrashTick <= 0 {
		cfg.CrashTick = 50 * time.Millisecond
	}
	if cfg.CrashSettleTimeout <= 0 {
		cfg.CrashSettleTimeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	led := ledger.New(0, cfg.Logger)
	settleMu := &sync.Mutex{}

	s := &Set{
		UserID: cfg.UserID,
		Ledger: led,
	}

	s.Slots = &Slots{
		core: newCore(domain.GameSlots, &cfg, led, settleMu),
		gen:  cfg.Slots,
		src:  cfg.Source,
	}
	s.Roulette = &Roulette{
		core: newCore(domain.GameRoulette, &cfg, led, settleMu),
		gen:  cfg.Roulette,
		src:  cfg.Source,
	}
	s.Crash = &Crash{
		core:          newCore(domain.GameCrash, &cfg, led, settleMu),
		gen:           cfg.Crash,
		src:           cfg.Source,
		tick:          cfg.CrashTick,
		settleTimeout: cfg.CrashSettleTimeout,
		now:           cfg.Now,
	}

	return s, nil
}

// Start seeds the ledger from the authoritative balance query service.
func (s *Set) Start(ctx context.Context) error {
	res, err := s.Slots.bank.GetBalance(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to seed balance: %w", err)
	}
	s.Ledger.Seed(domain.ChipsFromFloat(res.Chips))
	return nil
}

// Balance returns the player's current optimistic balance.
func (s *Set) Balance() domain.Chips {
	return s.Ledger.Balance()
}

// Close tears down any live crash round so no late tick can mutate a
// stale balance.
func (s *Set) Close() {
	s.Crash.Close()
}
