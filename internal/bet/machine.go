// Package bet implements the wager lifecycle state machine:
// Idle -> Placed -> Resolving -> {Settled, Failed}.
//
// No state is re-entered; a machine is consumed by exactly one bet, and
// a new bet starts a fresh machine.
package bet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memeseal/casino-core/internal/domain"
)

// ErrInvalidTransition is returned for any transition the lifecycle does
// not permit.
var ErrInvalidTransition = errors.New("invalid bet state transition")

// Machine drives one bet through its lifecycle.
type Machine struct {
	status domain.BetStatus
	bet    *domain.Bet
}

// NewMachine creates a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{status: domain.BetIdle}
}

// Status returns the current lifecycle state.
func (m *Machine) Status() domain.BetStatus {
	return m.status
}

// Bet returns the bet held by the machine, nil while Idle.
func (m *Machine) Bet() *domain.Bet {
	return m.bet
}

// InFlight reports whether a bet is Placed or Resolving.
func (m *Machine) InFlight() bool {
	return m.status == domain.BetPlaced || m.status == domain.BetResolving
}

// Place performs Idle -> Placed. It requires amount > 0 and
// amount <= balance; a rejected placement mutates nothing.
func (m *Machine) Place(gameType domain.GameType, amount, balance domain.Chips) (*domain.Bet, error) {
	if m.status != domain.BetIdle {
		return nil, fmt.Errorf("%w: place from %s", ErrInvalidTransition, m.status)
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount > balance {
		return nil, domain.ErrInsufficientFunds
	}

	m.bet = &domain.Bet{
		ID:       uuid.New().String(),
		GameType: gameType,
		Amount:   amount,
		PlacedAt: time.Now().UTC(),
		Status:   domain.BetPlaced,
	}
	m.status = domain.BetPlaced
	return m.bet, nil
}

// BeginResolving performs Placed -> Resolving when outcome generation
// starts. Immediate for slots and roulette, spans the flying phase for
// crash.
func (m *Machine) BeginResolving() error {
	if m.status != domain.BetPlaced {
		return fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, m.status)
	}
	m.status = domain.BetResolving
	m.bet.Status = domain.BetResolving
	return nil
}

// Settle performs Resolving -> Settled once the outcome is finalized and
// the payout computed. Terminal.
func (m *Machine) Settle() error {
	if m.status != domain.BetResolving {
		return fmt.Errorf("%w: settle from %s", ErrInvalidTransition, m.status)
	}
	m.status = domain.BetSettled
	m.bet.Status = domain.BetSettled
	return nil
}

// Fail performs Resolving -> Failed when the settlement call errors or
// times out. Terminal.
func (m *Machine) Fail() error {
	if m.status != domain.BetResolving {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, m.status)
	}
	m.status = domain.BetFailed
	m.bet.Status = domain.BetFailed
	return nil
}
