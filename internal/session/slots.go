package session

import (
	"context"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/game"
	"github.com/memeseal/casino-core/internal/rng"
)

// Slots is the game session controller for the slot machine.
type Slots struct {
	*core
	gen *game.SlotsGenerator
	src rng.Source

	lastOutcome *game.SlotsOutcome
}

// SlotsResult is the settled result of one spin.
type SlotsResult struct {
	Bet     *domain.Bet         `json:"bet"`
	Outcome *game.SlotsOutcome  `json:"outcome"`
	Payout  domain.PayoutResult `json:"payout"`
	Win     domain.Chips        `json:"win"`
	Balance domain.Chips        `json:"balance"`
}

// Spin places a bet and resolves it immediately: debit, draw, credit,
// settle, reconcile.
func (s *Slots) Spin(ctx context.Context, amount domain.Chips) (*SlotsResult, error) {
	b, err := s.place(amount)
	if err != nil {
		return nil, err
	}

	outcome, err := s.gen.Generate(s.src)
	if err != nil {
		// The draw itself failed; no settlement ever started.
		if _, rbErr := s.ledger.Rollback(b.ID); rbErr != nil {
			s.log.Error("rollback failed", "bet_id", b.ID, "error", rbErr)
		}
		s.mu.Lock()
		s.machine.Fail()
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.lastOutcome = outcome
	s.mu.Unlock()

	payout := s.gen.Evaluate(outcome)

	balance, err := s.settle(ctx, b, outcome.Summary(), payout)
	if err != nil {
		return nil, err
	}

	win := domain.Chips(0)
	if payout.Win() {
		win = b.Amount.MulFloor(payout.Multiplier)
	}

	return &SlotsResult{
		Bet:     b,
		Outcome: outcome,
		Payout:  payout,
		Win:     win,
		Balance: balance,
	}, nil
}

// Outcome returns the last drawn outcome, nil before the first spin.
func (s *Slots) Outcome() *game.SlotsOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}
