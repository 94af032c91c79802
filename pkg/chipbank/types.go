package chipbank

import (
	"errors"
	"fmt"
	"time"
)

// ErrRejected is the base error for a response the service refused.
var ErrRejected = errors.New("chip bank rejected request")

// ErrUnreachable is the base error for transport failures or malformed
// responses. Callers treat it exactly like ErrRejected.
var ErrUnreachable = errors.New("chip bank unreachable")

// ClientConfig holds the client configuration.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// PlaceBetRequest is the request body for POST /api/v1/casino/bet.
// Amounts are whole chips.
type PlaceBetRequest struct {
	UserID    string  `json:"user_id"`
	BetAmount float64 `json:"bet_amount"`
	WinAmount float64 `json:"win_amount"`
	Game      string  `json:"game"`
	Outcome   string  `json:"outcome,omitempty"`
	BetID     string  `json:"bet_id,omitempty"`
}

// placeBetResponse is the raw settlement response. Success is a plain
// bool: a body that omits the field decodes to false and is treated as a
// rejection.
type placeBetResponse struct {
	Success bool    `json:"success"`
	Chips   float64 `json:"chips"`
	Error   string  `json:"error,omitempty"`
}

// BetResult is a confirmed settlement: the authoritative post-settlement
// balance in whole chips.
type BetResult struct {
	Chips float64
}

// balanceResponse is the raw balance query response.
type balanceResponse struct {
	Success bool    `json:"success"`
	Chips   float64 `json:"chips"`
	Error   string  `json:"error,omitempty"`
}

// BalanceResult is a confirmed balance query.
type BalanceResult struct {
	Chips float64
}

func rejectionError(msg string) error {
	if msg == "" {
		msg = "missing success field"
	}
	return fmt.Errorf("%w: %s", ErrRejected, msg)
}
