// Package auth issues and validates the signed session tokens that bind a
// platform user id to a casino session. Account management and the
// chat-platform login flow live outside the core.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/memeseal/casino-core/internal/config"
)

var (
	// ErrInvalidToken covers malformed, forged and expired tokens.
	ErrInvalidToken = errors.New("invalid session token")
)

// Service issues and validates session tokens.
type Service struct {
	config *config.AuthConfig
}

// New creates a new auth service.
func New(cfg *config.AuthConfig) *Service {
	return &Service{config: cfg}
}

// Session is the validated content of a token.
type Session struct {
	ID     string
	UserID string
}

// IssueToken mints a signed session token for a platform user id.
func (s *Service) IssueToken(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": uuid.New().String(),
		"user_id":    userID,
		"exp":        now.Add(s.config.TokenExpiry).Unix(),
		"iat":        now.Unix(),
	})

	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the session it
// carries.
func (s *Service) ValidateToken(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Session{ID: sessionID, UserID: userID}, nil
}
