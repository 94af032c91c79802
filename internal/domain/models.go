// Package domain contains the core domain models for the wagering engine:
// chips, bets, payouts and reconciliation records.
package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Validation and settlement errors surfaced by the core.
var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidAmount         = errors.New("invalid bet amount")
	ErrBetInFlight           = errors.New("another bet is already in flight")
	ErrSettlementRejected    = errors.New("settlement rejected")
	ErrSettlementUnreachable = errors.New("settlement service unreachable")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
)

// Chips represents a chip quantity in hundredths of a chip.
// All balance arithmetic is integer; only payout multipliers are floats.
type Chips int64

// ChipsFromFloat converts a chip amount expressed in whole chips.
func ChipsFromFloat(v float64) Chips {
	return Chips(math.Round(v * 100))
}

// Float64 returns the chip amount in whole chips.
func (c Chips) Float64() float64 {
	return float64(c) / 100.0
}

// MulFloor applies a payout multiplier, rounding down in the house's favor.
func (c Chips) MulFloor(multiplier float64) Chips {
	return Chips(math.Floor(float64(c) * multiplier))
}

func (c Chips) String() string {
	return fmt.Sprintf("%.2f", c.Float64())
}

// GameType identifies one of the supported games.
type GameType string

const (
	GameSlots    GameType = "slots"
	GameRoulette GameType = "roulette"
	GameCrash    GameType = "crash"
)

// BetStatus represents the lifecycle state of a single wager.
type BetStatus string

const (
	BetIdle      BetStatus = "idle"
	BetPlaced    BetStatus = "placed"
	BetResolving BetStatus = "resolving"
	BetSettled   BetStatus = "settled"
	BetFailed    BetStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s BetStatus) Terminal() bool {
	return s == BetSettled || s == BetFailed
}

// Bet is a single in-flight wager. Immutable after placement except Status.
type Bet struct {
	ID       string    `json:"id"`
	GameType GameType  `json:"game_type"`
	Amount   Chips     `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
	Status   BetStatus `json:"status"`
}

// PayoutResult is the evaluated outcome of a bet: a multiplier applied to
// the wager and a display label for the UI layer.
type PayoutResult struct {
	Multiplier float64 `json:"multiplier"`
	Label      string  `json:"label"`
}

// Win reports whether the result pays anything.
func (p PayoutResult) Win() bool {
	return p.Multiplier > 0
}

// NoMatch is the sentinel returned when an outcome matches no pay line.
var NoMatch = PayoutResult{Multiplier: 0, Label: "NO MATCH"}

// ReconciliationRecord tracks one optimistic balance mutation until the
// authoritative response arrives or the bet is rolled back.
type ReconciliationRecord struct {
	BetID       string `json:"bet_id"`
	LocalDelta  Chips  `json:"local_delta"`
	ServerDelta Chips  `json:"server_delta"`
	Resolved    bool   `json:"resolved"`
}

// RoundRecord is the settled (or failed) form of a bet kept for game recall.
type RoundRecord struct {
	BetID         string    `json:"bet_id"`
	UserID        string    `json:"user_id"`
	GameType      GameType  `json:"game_type"`
	Wager         Chips     `json:"wager"`
	Win           Chips     `json:"win"`
	Multiplier    float64   `json:"multiplier"`
	Label         string    `json:"label"`
	Outcome       string    `json:"outcome"`
	BalanceBefore Chips     `json:"balance_before"`
	BalanceAfter  Chips     `json:"balance_after"`
	Status        BetStatus `json:"status"`
	PlayedAt      time.Time `json:"played_at"`
}

// ReasonCode classifies a rejected command for the UI layer.
type ReasonCode string

const (
	ReasonInsufficientFunds  ReasonCode = "INSUFFICIENT_FUNDS"
	ReasonInvalidAmount      ReasonCode = "INVALID_AMOUNT"
	ReasonBetInFlight        ReasonCode = "BET_IN_FLIGHT"
	ReasonSettlementRejected ReasonCode = "SETTLEMENT_REJECTED"
	ReasonRoundCrashed       ReasonCode = "ROUND_CRASHED"
	ReasonNoActiveRound      ReasonCode = "NO_ACTIVE_ROUND"
)

// ReasonFor maps a core error to its UI reason code.
func ReasonFor(err error) ReasonCode {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return ReasonInsufficientFunds
	case errors.Is(err, ErrInvalidAmount):
		return ReasonInvalidAmount
	case errors.Is(err, ErrBetInFlight):
		return ReasonBetInFlight
	case errors.Is(err, ErrSettlementRejected), errors.Is(err, ErrSettlementUnreachable):
		return ReasonSettlementRejected
	default:
		return ReasonCode("ERROR")
	}
}
