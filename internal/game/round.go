package game

import (
	"errors"
	"sync"
	"time"
)

// Crash round errors.
var (
	ErrRoundCrashed  = errors.New("round already crashed")
	ErrRoundFinished = errors.New("round already finished")
	ErrRoundCanceled = errors.New("round canceled")
)

// CrashPhase is the phase of a live crash round.
type CrashPhase string

const (
	PhaseFlying    CrashPhase = "flying"
	PhaseCrashed   CrashPhase = "crashed"
	PhaseCashedOut CrashPhase = "cashed_out"
	PhaseCanceled  CrashPhase = "canceled"
)

// CrashRound is the explicit state object for one crash round. The caller
// drives it with Advance at whatever tick granularity it wants, so a test
// can single-step a round without wall-clock waits.
//
// All transitions happen under one mutex: once Cancel or a crash has been
// observed, no later Advance can mutate anything.
type CrashRound struct {
	mu sync.Mutex

	gen        *CrashGenerator
	crashPoint float64
	startedAt  time.Time

	phase      CrashPhase
	multiplier float64
	cashedOut  float64
}

// NewCrashRound starts a round at the given instant with a pre-drawn
// crash point.
func NewCrashRound(gen *CrashGenerator, crashPoint float64, startedAt time.Time) *CrashRound {
	return &CrashRound{
		gen:        gen,
		crashPoint: crashPoint,
		startedAt:  startedAt,
		phase:      PhaseFlying,
		multiplier: 1.0,
	}
}

// Phase returns the current round phase.
func (r *CrashRound) Phase() CrashPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Multiplier returns the last observed live multiplier.
func (r *CrashRound) Multiplier() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.multiplier
}

// CrashPoint returns the drawn crash point.
func (r *CrashRound) CrashPoint() float64 {
	return r.crashPoint
}

// Advance moves the round clock to now. It returns the live multiplier and
// whether the round is done (crashed, cashed out or canceled). A tick that
// arrives after the round is done mutates nothing.
func (r *CrashRound) Advance(now time.Time) (multiplier float64, done bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseFlying {
		return r.multiplier, true
	}

	m := r.gen.MultiplierAt(now.Sub(r.startedAt))
	if m >= r.crashPoint {
		// The round crashes the instant m(t) reaches the crash point.
		r.multiplier = r.crashPoint
		r.phase = PhaseCrashed
		return r.multiplier, true
	}

	r.multiplier = m
	return m, false
}

// CashOut locks in the multiplier at the request instant. A request at or
// after the crash instant is rejected: late cash-out is a no-op, not a
// partial win.
func (r *CrashRound) CashOut(now time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.phase {
	case PhaseCrashed:
		return 0, ErrRoundCrashed
	case PhaseCashedOut, PhaseCanceled:
		return 0, ErrRoundFinished
	}

	m := r.gen.MultiplierAt(now.Sub(r.startedAt))
	if m >= r.crashPoint {
		// The request arrived in flight but the crash instant has passed.
		r.multiplier = r.crashPoint
		r.phase = PhaseCrashed
		return 0, ErrRoundCrashed
	}

	r.multiplier = m
	r.cashedOut = m
	r.phase = PhaseCashedOut
	return m, nil
}

// Cancel tears the round down. The cancellation is synchronous: when Cancel
// returns, any tick still in flight observes a finished round and cannot
// mutate the multiplier.
func (r *CrashRound) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseFlying {
		r.phase = PhaseCanceled
	}
}

// Outcome returns the terminal outcome of a finished round.
func (r *CrashRound) Outcome() *CrashOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &CrashOutcome{
		CrashPoint: r.crashPoint,
		CashedOut:  r.cashedOut,
	}
}
