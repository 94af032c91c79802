package history

import (
	"context"
	"sync"

	"github.com/memeseal/casino-core/internal/domain"
)

// defaultKeep is how many rounds the in-memory store retains per user.
const defaultKeep = 50

// Memory is a bounded in-memory Recorder. Oldest rounds are dropped once
// the per-user cap is reached.
type Memory struct {
	mu     sync.Mutex
	keep   int
	byUser map[string][]*domain.RoundRecord
}

// NewMemory creates an in-memory recorder keeping up to keep rounds per
// user; keep <= 0 uses the default of 50.
func NewMemory(keep int) *Memory {
	if keep <= 0 {
		keep = defaultKeep
	}
	return &Memory{
		keep:   keep,
		byUser: make(map[string][]*domain.RoundRecord),
	}
}

// Record appends a round, newest first.
func (m *Memory) Record(_ context.Context, rec *domain.RoundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	rounds := append([]*domain.RoundRecord{&cp}, m.byUser[rec.UserID]...)
	if len(rounds) > m.keep {
		rounds = rounds[:m.keep]
	}
	m.byUser[rec.UserID] = rounds
	return nil
}

// Recent returns up to limit records for a user, newest first.
func (m *Memory) Recent(_ context.Context, userID string, game domain.GameType, limit int) ([]*domain.RoundRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	var out []*domain.RoundRecord
	for _, rec := range m.byUser[userID] {
		if game != "" && rec.GameType != game {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
