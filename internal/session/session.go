// Package session contains the per-game controllers that drive a bet
// through its lifecycle: optimistic debit, outcome generation, optimistic
// credit, settlement and reconciliation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/memeseal/casino-core/internal/bet"
	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/history"
	"github.com/memeseal/casino-core/internal/ledger"
	"github.com/memeseal/casino-core/pkg/chipbank"
)

// ErrUnknownCategory is returned for a roulette pick that is not on the
// wheel.
var ErrUnknownCategory = errors.New("unknown roulette category")

// Bank is the settlement boundary consumed by the controllers. Implemented
// by *chipbank.Client; tests substitute a stub.
type Bank interface {
	PlaceBet(ctx context.Context, req *chipbank.PlaceBetRequest) (*chipbank.BetResult, error)
	GetBalance(ctx context.Context, userID string) (*chipbank.BalanceResult, error)
}

// core holds the state shared by all controllers: the ledger, the current
// lifecycle machine and the last outcome, guarded by one mutex per
// controller. The settle mutex is shared across a player's controllers so
// reconciles for the same player never interleave.
type core struct {
	mu sync.Mutex

	userID   string
	gameType domain.GameType
	minBet   domain.Chips
	maxBet   domain.Chips

	ledger   *ledger.Ledger
	bank     Bank
	recorder history.Recorder
	log      *slog.Logger
	settleMu *sync.Mutex

	machine       *bet.Machine
	balanceBefore domain.Chips
	lastLabel     string
	lastReason    domain.ReasonCode
}

func newCore(gameType domain.GameType, cfg *SetConfig, led *ledger.Ledger, settleMu *sync.Mutex) *core {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &core{
		userID:   cfg.UserID,
		gameType: gameType,
		minBet:   cfg.MinBet,
		maxBet:   cfg.MaxBet,
		ledger:   led,
		bank:     cfg.Bank,
		recorder: cfg.Recorder,
		log:      log.With("game", gameType, "user_id", cfg.UserID),
		settleMu: settleMu,
	}
}

// Balance returns the current optimistic balance.
func (c *core) Balance() domain.Chips {
	return c.ledger.Balance()
}

// Status returns the lifecycle state of the current bet.
func (c *core) Status() domain.BetStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine == nil {
		return domain.BetIdle
	}
	return c.machine.Status()
}

// LastReason returns the reason code of the most recent rejection.
func (c *core) LastReason() domain.ReasonCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReason
}

// Reset discards the terminal machine so a fresh bet can be placed. A
// reset while a bet is in flight is refused.
func (c *core) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine != nil && c.machine.InFlight() {
		return domain.ErrBetInFlight
	}
	c.machine = nil
	c.lastLabel = ""
	c.lastReason = ""
	return nil
}

// place runs the shared placement sequence under the controller mutex:
// refuse if a bet is in flight, validate against limits and balance,
// apply the optimistic debit, then move to Resolving. A new bet always
// gets a fresh machine.
func (c *core) place(amount domain.Chips) (*domain.Bet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine != nil && c.machine.InFlight() {
		c.lastReason = domain.ReasonBetInFlight
		return nil, domain.ErrBetInFlight
	}

	if amount < c.minBet || (c.maxBet > 0 && amount > c.maxBet) {
		c.lastReason = domain.ReasonInvalidAmount
		return nil, fmt.Errorf("%w: %s outside [%s, %s]",
			domain.ErrInvalidAmount, amount, c.minBet, c.maxBet)
	}

	m := bet.NewMachine()
	balanceBefore := c.ledger.Balance()

	b, err := m.Place(c.gameType, amount, balanceBefore)
	if err != nil {
		c.lastReason = domain.ReasonFor(err)
		return nil, err
	}

	c.machine = m
	c.balanceBefore = balanceBefore

	// Debit before any outcome is known.
	if _, err := c.ledger.Apply(b.ID, -amount); err != nil {
		return nil, err
	}

	if err := m.BeginResolving(); err != nil {
		return nil, err
	}

	c.log.Info("bet placed", "bet_id", b.ID, "amount", amount.String())
	return b, nil
}

// settle finalizes a resolving bet: optimistic credit, settlement call,
// reconciliation. On any rejection or transport failure the optimistic
// deltas are rolled back, the bet moves to Failed, the ledger is re-seeded
// from the balance query service, and a retryable error is surfaced.
func (c *core) settle(ctx context.Context, b *domain.Bet, summary string, payout domain.PayoutResult) (domain.Chips, error) {
	win := domain.Chips(0)
	if payout.Win() {
		win = b.Amount.MulFloor(payout.Multiplier)
	}

	if win > 0 {
		if _, err := c.ledger.Apply(b.ID, win); err != nil {
			return c.ledger.Balance(), err
		}
	}

	c.settleMu.Lock()
	defer c.settleMu.Unlock()

	res, err := c.bank.PlaceBet(ctx, &chipbank.PlaceBetRequest{
		UserID:    c.userID,
		BetAmount: b.Amount.Float64(),
		WinAmount: win.Float64(),
		Game:      string(b.GameType),
		Outcome:   summary,
		BetID:     b.ID,
	})
	if err != nil {
		return c.fail(ctx, b, summary, payout, err)
	}

	balance, err := c.ledger.Reconcile(b.ID, domain.ChipsFromFloat(res.Chips))
	if err != nil {
		return balance, err
	}

	c.mu.Lock()
	if err := c.machine.Settle(); err != nil {
		c.mu.Unlock()
		return balance, err
	}
	c.lastLabel = payout.Label
	c.lastReason = ""
	c.mu.Unlock()

	c.record(ctx, b, summary, payout, win, balance)

	c.log.Info("bet settled",
		"bet_id", b.ID, "multiplier", payout.Multiplier, "win", win.String(), "balance", balance.String())

	return balance, nil
}

// fail drives the failure path: rollback, Failed state, balance re-sync.
// Rejections and transport errors are handled identically; unknown is
// never success.
func (c *core) fail(ctx context.Context, b *domain.Bet, summary string, payout domain.PayoutResult, cause error) (domain.Chips, error) {
	balance, rbErr := c.ledger.Rollback(b.ID)
	if rbErr != nil {
		c.log.Error("rollback failed", "bet_id", b.ID, "error", rbErr)
	}

	c.mu.Lock()
	if err := c.machine.Fail(); err != nil {
		c.log.Error("failed transition rejected", "bet_id", b.ID, "error", err)
	}
	c.lastReason = domain.ReasonSettlementRejected
	c.mu.Unlock()

	c.record(ctx, b, summary, payout, 0, balance)

	// Best-effort re-sync from the authoritative balance after the
	// ambiguous failure.
	if res, err := c.bank.GetBalance(ctx, c.userID); err == nil {
		c.ledger.Seed(domain.ChipsFromFloat(res.Chips))
		balance = c.ledger.Balance()
	}

	c.log.Warn("bet failed", "bet_id", b.ID, "error", cause, "balance", balance.String())

	switch {
	case errors.Is(cause, chipbank.ErrRejected):
		return balance, fmt.Errorf("%w: %v", domain.ErrSettlementRejected, cause)
	default:
		return balance, fmt.Errorf("%w: %v", domain.ErrSettlementUnreachable, cause)
	}
}

// record stores the round for game recall. Recall is best effort and never
// fails a settlement.
func (c *core) record(ctx context.Context, b *domain.Bet, summary string, payout domain.PayoutResult, win, balance domain.Chips) {
	if c.recorder == nil {
		return
	}
	rec := &domain.RoundRecord{
		BetID:         b.ID,
		UserID:        c.userID,
		GameType:      b.GameType,
		Wager:         b.Amount,
		Win:           win,
		Multiplier:    payout.Multiplier,
		Label:         payout.Label,
		Outcome:       summary,
		BalanceBefore: c.balanceBefore,
		BalanceAfter:  balance,
		Status:        b.Status,
		PlayedAt:      time.Now().UTC(),
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.log.Error("failed to record round", "bet_id", b.ID, "error", err)
	}
}
