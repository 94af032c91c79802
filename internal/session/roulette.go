package session

import (
	"context"
	"fmt"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/game"
	"github.com/memeseal/casino-core/internal/rng"
)

// Roulette is the game session controller for the weighted wheel.
type Roulette struct {
	*core
	gen *game.RouletteGenerator
	src rng.Source

	lastOutcome *game.RouletteOutcome
}

// RouletteResult is the settled result of one spin.
type RouletteResult struct {
	Bet     *domain.Bet           `json:"bet"`
	Pick    string                `json:"pick"`
	Outcome *game.RouletteOutcome `json:"outcome"`
	Payout  domain.PayoutResult   `json:"payout"`
	Win     domain.Chips          `json:"win"`
	Balance domain.Chips          `json:"balance"`
}

// Categories returns the configured wheel segments for the UI layer.
func (r *Roulette) Categories() []game.Category {
	return r.gen.Categories()
}

// Spin places a bet on a category and resolves it immediately. The pick
// must be a configured category; validation happens before any state
// mutation or network call.
func (r *Roulette) Spin(ctx context.Context, amount domain.Chips, pick string) (*RouletteResult, error) {
	if _, ok := r.gen.Category(pick); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, pick)
	}

	b, err := r.place(amount)
	if err != nil {
		return nil, err
	}

	outcome, err := r.gen.Generate(r.src)
	if err != nil {
		if _, rbErr := r.ledger.Rollback(b.ID); rbErr != nil {
			r.log.Error("rollback failed", "bet_id", b.ID, "error", rbErr)
		}
		r.mu.Lock()
		r.machine.Fail()
		r.mu.Unlock()
		return nil, err
	}

	r.mu.Lock()
	r.lastOutcome = outcome
	r.mu.Unlock()

	payout := r.gen.Evaluate(pick, outcome)

	summary := fmt.Sprintf("pick=%s winner=%s", pick, outcome.Summary())
	balance, err := r.settle(ctx, b, summary, payout)
	if err != nil {
		return nil, err
	}

	win := domain.Chips(0)
	if payout.Win() {
		win = b.Amount.MulFloor(payout.Multiplier)
	}

	return &RouletteResult{
		Bet:     b,
		Pick:    pick,
		Outcome: outcome,
		Payout:  payout,
		Win:     win,
		Balance: balance,
	}, nil
}

// Outcome returns the last drawn outcome, nil before the first spin.
func (r *Roulette) Outcome() *game.RouletteOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastOutcome
}
