// Package ledger provides the client-side balance cache with optimistic
// apply and authoritative reconciliation.
//
// The balance is single-writer: every mutation goes through Apply,
// Reconcile, Rollback or Seed. After any sequence of applies and
// reconciles the balance equals the last authoritative value received,
// overlaid with at most the unresolved optimistic deltas still in flight.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/memeseal/casino-core/internal/domain"
)

var (
	// ErrUnknownBet is returned when reconciling a bet id with no record.
	ErrUnknownBet = errors.New("no reconciliation record for bet")
	// ErrBetResolved is returned when applying a delta for an already
	// reconciled bet id.
	ErrBetResolved = errors.New("bet already reconciled")
)

// Ledger is the local chips balance plus the per-bet reconciliation state.
type Ledger struct {
	mu      sync.Mutex
	balance domain.Chips
	records map[string]*domain.ReconciliationRecord
	log     *slog.Logger
}

// New creates a ledger with an opening balance.
func New(opening domain.Chips, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{
		balance: opening,
		records: make(map[string]*domain.ReconciliationRecord),
		log:     log,
	}
}

// Balance returns the current (possibly optimistic) balance.
func (l *Ledger) Balance() domain.Chips {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Seed replaces the balance with an authoritative value, e.g. at session
// start or when re-syncing after an ambiguous failure. Unresolved records
// are left alone; their rollback deltas still apply if settlement fails.
func (l *Ledger) Seed(authoritative domain.Chips) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = authoritative
}

// Apply mutates the balance immediately and returns the new value. Never
// blocks. Deltas for one bet id accumulate into a single unresolved
// record, so a debit and the later optimistic credit roll back together.
func (l *Ledger) Apply(betID string, delta domain.Chips) (domain.Chips, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[betID]
	if ok && rec.Resolved {
		return l.balance, fmt.Errorf("%w: %s", ErrBetResolved, betID)
	}
	if !ok {
		rec = &domain.ReconciliationRecord{BetID: betID}
		l.records[betID] = rec
	}

	rec.LocalDelta += delta
	l.balance += delta

	l.log.Debug("optimistic apply",
		"bet_id", betID, "delta", delta.String(), "balance", l.balance.String())

	return l.balance, nil
}

// Reconcile resolves a bet with the authoritative balance. The balance is
// replaced, not incremented: the server value is the source of truth and
// supersedes any optimistic drift. A second call for the same bet id is a
// no-op.
func (l *Ledger) Reconcile(betID string, authoritative domain.Chips) (domain.Chips, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[betID]
	if !ok {
		return l.balance, fmt.Errorf("%w: %s", ErrUnknownBet, betID)
	}
	if rec.Resolved {
		return l.balance, nil
	}

	rec.ServerDelta = authoritative - (l.balance - rec.LocalDelta)
	rec.Resolved = true
	l.balance = authoritative

	l.log.Debug("reconciled",
		"bet_id", betID, "balance", l.balance.String(), "server_delta", rec.ServerDelta.String())

	return l.balance, nil
}

// Rollback reverts the optimistic delta for a failed bet: the balance is
// restored by subtracting exactly what Apply added. Idempotent per bet id.
func (l *Ledger) Rollback(betID string) (domain.Chips, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[betID]
	if !ok {
		return l.balance, fmt.Errorf("%w: %s", ErrUnknownBet, betID)
	}
	if rec.Resolved {
		return l.balance, nil
	}

	l.balance -= rec.LocalDelta
	rec.Resolved = true

	l.log.Debug("rolled back",
		"bet_id", betID, "delta", rec.LocalDelta.String(), "balance", l.balance.String())

	return l.balance, nil
}

// Record returns a copy of the reconciliation record for a bet id.
func (l *Ledger) Record(betID string) (domain.ReconciliationRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[betID]
	if !ok {
		return domain.ReconciliationRecord{}, false
	}
	return *rec, true
}

// Unresolved returns the number of records still awaiting reconciliation.
func (l *Ledger) Unresolved() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, rec := range l.records {
		if !rec.Resolved {
			n++
		}
	}
	return n
}
