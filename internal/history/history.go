// Package history provides game recall: a record of settled and failed
// rounds per player. Two stores exist, an in-memory ring for the live
// session and a postgres-backed store for durable recall.
package history

import (
	"context"

	"github.com/memeseal/casino-core/internal/domain"
)

// Recorder stores and retrieves round records.
type Recorder interface {
	// Record appends one settled or failed round.
	Record(ctx context.Context, rec *domain.RoundRecord) error
	// Recent returns records for a user, newest first. An empty game
	// filter returns all games.
	Recent(ctx context.Context, userID string, game domain.GameType, limit int) ([]*domain.RoundRecord, error)
}
