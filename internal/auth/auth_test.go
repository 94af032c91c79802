package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/memeseal/casino-core/internal/config"
)

func newService(secret string, expiry time.Duration) *Service {
	return New(&config.AuthConfig{JWTSecret: secret, TokenExpiry: expiry})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newService("test-secret", time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := svc.IssueToken("user-1")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}

		session, err := svc.ValidateToken(token)
		if err != nil {
			t.Fatalf("Failed to validate token: %v", err)
		}
		if session.UserID != "user-1" {
			t.Errorf("Expected user-1, got %s", session.UserID)
		}
		if session.ID == "" {
			t.Error("Session should carry an id")
		}
	})

	t.Run("EmptyUserIDRejected", func(t *testing.T) {
		if _, err := svc.IssueToken(""); err == nil {
			t.Error("Expected error for empty user id")
		}
	})

	t.Run("UniqueSessionIDs", func(t *testing.T) {
		t1, err := svc.IssueToken("user-1")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		t2, err := svc.IssueToken("user-1")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		s1, err := svc.ValidateToken(t1)
		if err != nil {
			t.Fatalf("Failed to validate token: %v", err)
		}
		s2, err := svc.ValidateToken(t2)
		if err != nil {
			t.Fatalf("Failed to validate token: %v", err)
		}
		if s1.ID == s2.ID {
			t.Error("Two tokens should carry distinct session ids")
		}
	})
}

func TestValidateRejects(t *testing.T) {
	svc := newService("test-secret", time.Hour)

	t.Run("Garbage", func(t *testing.T) {
		if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		forged := newService("other-secret", time.Hour)
		token, err := forged.IssueToken("user-1")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		expired := newService("test-secret", -time.Minute)
		token, err := expired.IssueToken("user-1")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
