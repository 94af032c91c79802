package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/memeseal/casino-core/internal/domain"
)

// Postgres is a durable Recorder backed by PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection and ensures the schema exists.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

// migrate creates the rounds table.
func (p *Postgres) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rounds (
		bet_id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		game_type VARCHAR(50) NOT NULL,
		wager BIGINT NOT NULL,
		win BIGINT NOT NULL,
		multiplier DOUBLE PRECISION NOT NULL,
		label VARCHAR(255) NOT NULL,
		outcome TEXT NOT NULL,
		balance_before BIGINT NOT NULL,
		balance_after BIGINT NOT NULL,
		status VARCHAR(50) NOT NULL,
		played_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rounds_user_played
		ON rounds (user_id, played_at DESC);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate rounds schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Record inserts one round. Inserting the same bet id twice is a no-op so
// a retried settlement cannot duplicate recall history.
func (p *Postgres) Record(ctx context.Context, rec *domain.RoundRecord) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rounds (bet_id, user_id, game_type, wager, win, multiplier, label, outcome, balance_before, balance_after, status, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (bet_id) DO NOTHING
	`, rec.BetID, rec.UserID, rec.GameType, int64(rec.Wager), int64(rec.Win), rec.Multiplier,
		rec.Label, rec.Outcome, int64(rec.BalanceBefore), int64(rec.BalanceAfter), rec.Status, rec.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to record round: %w", err)
	}
	return nil
}

// Recent returns up to limit rounds for a user, newest first.
func (p *Postgres) Recent(ctx context.Context, userID string, game domain.GameType, limit int) ([]*domain.RoundRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT bet_id, user_id, game_type, wager, win, multiplier, label, outcome, balance_before, balance_after, status, played_at
		FROM rounds WHERE user_id = $1`
	args := []interface{}{userID}

	if game != "" {
		query += ` AND game_type = $2 ORDER BY played_at DESC LIMIT $3`
		args = append(args, game, limit)
	} else {
		query += ` ORDER BY played_at DESC LIMIT $2`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var out []*domain.RoundRecord
	for rows.Next() {
		var rec domain.RoundRecord
		var wager, win, before, after int64
		if err := rows.Scan(&rec.BetID, &rec.UserID, &rec.GameType, &wager, &win,
			&rec.Multiplier, &rec.Label, &rec.Outcome, &before, &after, &rec.Status, &rec.PlayedAt); err != nil {
			return nil, err
		}
		rec.Wager = domain.Chips(wager)
		rec.Win = domain.Chips(win)
		rec.BalanceBefore = domain.Chips(before)
		rec.BalanceAfter = domain.Chips(after)
		out = append(out, &rec)
	}

	return out, rows.Err()
}
