package session

import (
	"context"
	"sync"
	"time"

	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/game"
	"github.com/memeseal/casino-core/internal/rng"
)

// CrashTick is one observation of the live multiplier, pushed to
// subscribers while a round is flying.
type CrashTick struct {
	Multiplier float64         `json:"multiplier"`
	Phase      game.CrashPhase `json:"phase"`
}

// CrashResult is the settled (or failed) result of one crash round.
type CrashResult struct {
	Bet     *domain.Bet         `json:"bet"`
	Outcome *game.CrashOutcome  `json:"outcome"`
	Payout  domain.PayoutResult `json:"payout"`
	Win     domain.Chips        `json:"win"`
	Balance domain.Chips        `json:"balance"`
}

// Crash is the game session controller for the crash game. The live
// multiplier clock is a periodic timer owned by the controller; all round
// transitions go through the round's own mutex so cancellation is
// synchronous.
type Crash struct {
	*core
	gen *game.CrashGenerator
	src rng.Source

	tick          time.Duration
	settleTimeout time.Duration
	now           func() time.Time

	round      *game.CrashRound
	stop       func()
	cashoutCh  chan struct{}
	doneCh     chan struct{}
	lastResult *CrashResult

	subsMu sync.Mutex
	subs   map[chan CrashTick]struct{}
}

// Place starts a crash round: debit, draw the hidden crash point, start
// the multiplier clock. The bet stays Resolving for the whole flying
// phase.
func (c *Crash) Place(ctx context.Context, amount domain.Chips) (*domain.Bet, error) {
	b, err := c.place(amount)
	if err != nil {
		return nil, err
	}

	crashPoint, err := c.gen.Generate(c.src)
	if err != nil {
		if _, rbErr := c.ledger.Rollback(b.ID); rbErr != nil {
			c.log.Error("rollback failed", "bet_id", b.ID, "error", rbErr)
		}
		c.mu.Lock()
		c.machine.Fail()
		c.mu.Unlock()
		return nil, err
	}

	stopCh := make(chan struct{})

	c.mu.Lock()
	c.round = game.NewCrashRound(c.gen, crashPoint, c.now())
	c.stop = sync.OnceFunc(func() { close(stopCh) })
	c.cashoutCh = make(chan struct{}, 1)
	c.doneCh = make(chan struct{})
	c.lastResult = nil
	round, cashoutCh, doneCh := c.round, c.cashoutCh, c.doneCh
	c.mu.Unlock()

	go c.run(b, round, stopCh, cashoutCh, doneCh)
	return b, nil
}

// CashOut locks in the current multiplier. A request at or after the
// crash instant is rejected and the round settles as a loss.
func (c *Crash) CashOut() (float64, error) {
	c.mu.Lock()
	round := c.round
	cashoutCh := c.cashoutCh
	c.mu.Unlock()

	if round == nil {
		return 0, game.ErrRoundFinished
	}

	m, err := round.CashOut(c.now())
	if err != nil {
		return 0, err
	}

	// Wake the clock; if a tick already observed the cash-out, the
	// signal is redundant and dropped.
	select {
	case cashoutCh <- struct{}{}:
	default:
	}

	return m, nil
}

// Done returns a channel closed once the current round has fully settled,
// nil when no round was started.
func (c *Crash) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doneCh
}

// Result returns the result of the last concluded round, nil while a
// round is in flight or none was played.
func (c *Crash) Result() *CrashResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Close tears the round down, e.g. when the player navigates away. The
// round is canceled synchronously before the clock goroutine is reaped,
// so no late tick can mutate a stale balance.
func (c *Crash) Close() {
	c.mu.Lock()
	round := c.round
	stop := c.stop
	doneCh := c.doneCh
	c.mu.Unlock()

	if round == nil {
		return
	}

	round.Cancel()
	stop()
	<-doneCh
}

// Subscribe registers a live-tick listener. The returned cancel function
// must be called when the listener goes away. Slow listeners miss ticks
// rather than blocking the clock.
func (c *Crash) Subscribe() (<-chan CrashTick, func()) {
	ch := make(chan CrashTick, 16)

	c.subsMu.Lock()
	if c.subs == nil {
		c.subs = make(map[chan CrashTick]struct{})
	}
	c.subs[ch] = struct{}{}
	c.subsMu.Unlock()

	cancel := func() {
		c.subsMu.Lock()
		delete(c.subs, ch)
		c.subsMu.Unlock()
	}
	return ch, cancel
}

func (c *Crash) broadcast(tick CrashTick) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- tick:
		default:
		}
	}
}

// run is the cooperatively scheduled multiplier clock for one round.
func (c *Crash) run(b *domain.Bet, round *game.CrashRound, stopCh, cashoutCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			round.Cancel()
			c.conclude(b, round)
			return
		case <-cashoutCh:
			c.conclude(b, round)
			return
		case <-ticker.C:
			m, done := round.Advance(c.now())
			c.broadcast(CrashTick{Multiplier: m, Phase: round.Phase()})
			if done {
				c.conclude(b, round)
				return
			}
		}
	}
}

// conclude settles or aborts a finished round exactly once.
func (c *Crash) conclude(b *domain.Bet, round *game.CrashRound) {
	outcome := round.Outcome()
	phase := round.Phase()

	if phase == game.PhaseCanceled {
		// Session discarded mid-flight: revert locally, no settlement.
		balance, err := c.ledger.Rollback(b.ID)
		if err != nil {
			c.log.Error("rollback failed", "bet_id", b.ID, "error", err)
		}
		c.mu.Lock()
		c.machine.Fail()
		c.lastResult = &CrashResult{
			Bet:     b,
			Outcome: outcome,
			Payout:  domain.PayoutResult{Multiplier: 0, Label: "CANCELED"},
			Balance: balance,
		}
		c.mu.Unlock()
		c.log.Info("crash round canceled", "bet_id", b.ID)
		return
	}

	var payout domain.PayoutResult
	if outcome.CashedOut > 0 {
		payout = domain.PayoutResult{Multiplier: outcome.CashedOut, Label: "CASHED OUT"}
	} else {
		payout = domain.PayoutResult{Multiplier: 0, Label: "CRASHED"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.settleTimeout)
	defer cancel()

	balance, err := c.settle(ctx, b, outcome.Summary(), payout)
	if err != nil {
		c.log.Warn("crash settlement failed", "bet_id", b.ID, "error", err)
	}

	win := domain.Chips(0)
	if err == nil && payout.Win() {
		win = b.Amount.MulFloor(payout.Multiplier)
	}

	c.mu.Lock()
	c.lastResult = &CrashResult{
		Bet:     b,
		Outcome: outcome,
		Payout:  payout,
		Win:     win,
		Balance: balance,
	}
	c.mu.Unlock()

	c.broadcast(CrashTick{Multiplier: round.Multiplier(), Phase: phase})
}

// Multiplier returns the last observed live multiplier, 1.0 before any
// round.
func (c *Crash) Multiplier() float64 {
	c.mu.Lock()
	round := c.round
	c.mu.Unlock()
	if round == nil {
		return 1.0
	}
	return round.Multiplier()
}

// Phase returns the current round phase; canceled when no round exists.
func (c *Crash) Phase() game.CrashPhase {
	c.mu.Lock()
	round := c.round
	c.mu.Unlock()
	if round == nil {
		return game.PhaseCanceled
	}
	return round.Phase()
}
