package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims represents the subject identity embedded in a bearer token
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for bearer token creation and
// validation. PasetoService (PASETO v4.local) is the implementation.
type TokenService interface {
	CreateToken(userID uuid.UUID, username string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
