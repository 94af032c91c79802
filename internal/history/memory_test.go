package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/memeseal/casino-core/internal/domain"
)

func record(userID string, game domain.GameType, n int) *domain.RoundRecord {
	return &domain.RoundRecord{
		BetID:    fmt.Sprintf("bet-%d", n),
		UserID:   userID,
		GameType: game,
		Wager:    domain.ChipsFromFloat(10),
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("NewestFirst", func(t *testing.T) {
		m := NewMemory(0)
		for i := 0; i < 3; i++ {
			if err := m.Record(ctx, record("user-1", domain.GameSlots, i)); err != nil {
				t.Fatalf("Failed to record: %v", err)
			}
		}
		rounds, err := m.Recent(ctx, "user-1", "", 10)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if len(rounds) != 3 {
			t.Fatalf("Expected 3 rounds, got %d", len(rounds))
		}
		if rounds[0].BetID != "bet-2" || rounds[2].BetID != "bet-0" {
			t.Errorf("Rounds out of order: %s .. %s", rounds[0].BetID, rounds[2].BetID)
		}
	})

	t.Run("PerUserCap", func(t *testing.T) {
		m := NewMemory(2)
		for i := 0; i < 5; i++ {
			if err := m.Record(ctx, record("user-1", domain.GameSlots, i)); err != nil {
				t.Fatalf("Failed to record: %v", err)
			}
		}
		rounds, err := m.Recent(ctx, "user-1", "", 10)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if len(rounds) != 2 {
			t.Fatalf("Expected cap of 2, got %d", len(rounds))
		}
		if rounds[0].BetID != "bet-4" {
			t.Errorf("Expected newest round first, got %s", rounds[0].BetID)
		}
	})

	t.Run("GameFilter", func(t *testing.T) {
		m := NewMemory(0)
		if err := m.Record(ctx, record("user-1", domain.GameSlots, 0)); err != nil {
			t.Fatalf("Failed to record: %v", err)
		}
		if err := m.Record(ctx, record("user-1", domain.GameCrash, 1)); err != nil {
			t.Fatalf("Failed to record: %v", err)
		}
		rounds, err := m.Recent(ctx, "user-1", domain.GameCrash, 10)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if len(rounds) != 1 || rounds[0].GameType != domain.GameCrash {
			t.Errorf("Filter returned %d rounds", len(rounds))
		}
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		m := NewMemory(0)
		if err := m.Record(ctx, record("user-1", domain.GameSlots, 0)); err != nil {
			t.Fatalf("Failed to record: %v", err)
		}
		rounds, err := m.Recent(ctx, "user-2", "", 10)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if len(rounds) != 0 {
			t.Errorf("Expected no rounds for user-2, got %d", len(rounds))
		}
	})

	t.Run("RecordsAreCopied", func(t *testing.T) {
		m := NewMemory(0)
		rec := record("user-1", domain.GameSlots, 0)
		if err := m.Record(ctx, rec); err != nil {
			t.Fatalf("Failed to record: %v", err)
		}
		rec.BetID = "mutated"
		rounds, err := m.Recent(ctx, "user-1", "", 10)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if rounds[0].BetID != "bet-0" {
			t.Errorf("Stored record was aliased: %s", rounds[0].BetID)
		}
	})
}
