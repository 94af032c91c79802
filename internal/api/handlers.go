// Package api exposes the wagering core to the UI layer: session
// bootstrap, the per-game commands, observable state and the crash tick
// stream.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/memeseal/casino-core/internal/auth"
	"github.com/memeseal/casino-core/internal/config"
	"github.com/memeseal/casino-core/internal/domain"
	"github.com/memeseal/casino-core/internal/game"
	"github.com/memeseal/casino-core/internal/history"
	"github.com/memeseal/casino-core/internal/session"
)

// Handler contains all HTTP handlers.
type Handler struct {
	auth     *auth.Service
	bank     session.Bank
	recorder history.Recorder
	cfg      *config.Config
	log      *slog.Logger

	slots    *game.SlotsGenerator
	roulette *game.RouletteGenerator
	crash    *game.CrashGenerator

	mu       sync.Mutex
	sessions map[string]*session.Set
}

// New creates a new API handler.
func New(authSvc *auth.Service, bank session.Bank, recorder history.Recorder,
	cfg *config.Config, log *slog.Logger,
	slots *game.SlotsGenerator, roulette *game.RouletteGenerator, crash *game.CrashGenerator) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		auth:     authSvc,
		bank:     bank,
		recorder: recorder,
		cfg:      cfg,
		log:      log,
		slots:    slots,
		roulette: roulette,
		crash:    crash,
		sessions: make(map[string]*session.Set),
	}
}

// Response helpers

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondCoreError maps a core error onto a reason code and HTTP status.
func respondCoreError(w http.ResponseWriter, err error) {
	reason := domain.ReasonFor(err)
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrBetInFlight):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSettlementRejected), errors.Is(err, domain.ErrSettlementUnreachable):
		status = http.StatusBadGateway
	case errors.Is(err, game.ErrRoundCrashed), errors.Is(err, game.ErrRoundFinished):
		status = http.StatusConflict
		reason = domain.ReasonRoundCrashed
	}
	respondError(w, status, string(reason), err.Error())
}

// ServerInfo handles GET /.
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":        "casino-core",
		"description": "Wagering engine and balance reconciliation core",
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// StartSessionRequest is the body for POST /api/v1/session.
type StartSessionRequest struct {
	UserID string `json:"user_id"`
}

// StartSession creates (or replaces) a player's session set, seeds the
// ledger from the balance query service and mints a session token.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "user_id is required")
		return
	}

	set, err := session.NewSet(session.SetConfig{
		UserID:    req.UserID,
		Bank:      h.bank,
		Recorder:  h.recorder,
		Logger:    h.log,
		MinBet:    domain.ChipsFromFloat(h.cfg.Game.MinBet),
		MaxBet:    domain.ChipsFromFloat(h.cfg.Game.MaxBet),
		Slots:     h.slots,
		Roulette:  h.roulette,
		Crash:     h.crash,
		CrashTick: h.cfg.Game.CrashTick,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SESSION_ERROR", err.Error())
		return
	}

	if err := set.Start(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "BALANCE_UNAVAILABLE", err.Error())
		return
	}

	token, err := h.auth.IssueToken(req.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_ERROR", err.Error())
		return
	}

	h.mu.Lock()
	if old, ok := h.sessions[req.UserID]; ok {
		old.Close()
	}
	h.sessions[req.UserID] = set
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":   token,
		"balance": set.Balance().Float64(),
	})
}

// EndSession tears down the caller's session set, canceling any live
// crash round.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	h.mu.Lock()
	set, ok := h.sessions[userID]
	delete(h.sessions, userID)
	h.mu.Unlock()

	if ok {
		set.Close()
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) (*session.Set, bool) {
	userID := userIDFrom(r)

	h.mu.Lock()
	set, ok := h.sessions[userID]
	h.mu.Unlock()

	if !ok {
		respondError(w, http.StatusNotFound, "NO_SESSION", "no active session; start one first")
		return nil, false
	}
	return set, true
}

// State handles GET /api/v1/state: the observable snapshot for the UI.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	set, ok := h.set(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"balance": set.Balance().Float64(),
		"slots": map[string]interface{}{
			"status":  set.Slots.Status(),
			"outcome": set.Slots.Outcome(),
		},
		"roulette": map[string]interface{}{
			"status":     set.Roulette.Status(),
			"outcome":    set.Roulette.Outcome(),
			"categories": set.Roulette.Categories(),
		},
		"crash": map[string]interface{}{
			"status":     set.Crash.Status(),
			"phase":      set.Crash.Phase(),
			"multiplier": set.Crash.Multiplier(),
			"result":     set.Crash.Result(),
		},
	})
}

// wagerRequest is the shared body for the bet commands. Amounts are whole
// chips.
type wagerRequest struct {
	Amount float64 `json:"amount"`
	Pick   string  `json:"pick,omitempty"`
}

// SpinSlots handles POST /api/v1/slots/spin.
func (h *Handler) SpinSlots(w http.ResponseWriter, r *http.Request) {
	set, ok := h.set(w, r)
	if !ok {
		return
	}

	var req wagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	result, err := set.Slots.Spin(r.Context(), domain.ChipsFromFloat(req.Amount))
	if err != nil {
		respondCoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SpinRoulette handles POST /api/v1/roulette/spin.
func (h *Handler) SpinRoulette(w http.ResponseWriter, r *http.Request) {
	set, ok := h.set(w, r)
	if !ok {
		return
	}

	var req wagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	result, err := set.Roulette.Spin(r.Context(), domain.ChipsFromFloat(req.Amount), req.Pick)
	if err != nil {
		if errors.Is(err, session.ErrUnknownCategory) {
			respondError(w, http.StatusBadRequest, "UNKNOWN_CATEGORY", err.Error())
			return
		}
		respondCoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PlaceCrashBet handles POST /api/v1/crash/bet.
func (h *Handler) PlaceCrashBet(w http.ResponseWriter, r *http.Request) {
	set, ok := h.set(w, r)
	if !ok {
		return
	}

	var req wagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	b, err := set.Crash.Place(r.Context(), domain.ChipsFromFloat(req.Amount))
	if err != nil {
		respondCoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bet":     b,
		"balance": set.Balance().Float64(),
	})
}

// CashOut handles POST /api/v1/crash/cashout.
func (h *Handler) CashOut(w http.ResponseWriter, r *http.Request) {
	set, ok := h.set(w, r)
	if !ok {
		return
	}

	multiplier, err := set.Crash.CashOut()
	if err != nil {
		respondCoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"multiplier": multiplier,
	})
}

// resetRequest selects the game controller to reset.
type resetRequest struct {
	Game domain.GameType `json:"game"`
}

// Reset handles POST /api/v1/reset: clears a terminal bet so a fresh one
// can be placed.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	set, ok := h.set(w, r)
	if !ok {
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	var err error
	switch req.Game {
	case domain.GameSlots:
		err = set.Slots.Reset()
	case domain.GameRoulette:
		err = set.Roulette.Reset()
	case domain.GameCrash:
		err = set.Crash.Reset()
	default:
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "unknown game")
		return
	}
	if err != nil {
		respondCoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// History handles GET /api/v1/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		respondJSON(w, http.StatusOK, []interface{}{})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	game := domain.GameType(r.URL.Query().Get("game"))

	records, err := h.recorder.Recent(r.Context(), userIDFrom(r), game, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "HISTORY_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, records)
}
