package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

// PasetoService issues and validates PASETO v4.local bearer tokens
// (symmetric encryption with XChaCha20-Poly1305). Any modification to the
// payload invalidates the token; rotating the key invalidates every token
// issued before the rotation.
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
}

// NewPasetoService builds the token codec from the process-wide signing
// key. The key is loaded once at startup and immutable afterwards.
func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
	}, nil
}

// CreateToken generates a new token carrying the subject's id and username
func (s *PasetoService) CreateToken(userID uuid.UUID, username string, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetString("user_id", userID.String())
	token.SetString("username", username)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken validates a token and returns the embedded claims. Signature
// mismatch, malformed structure, and missing claims all collapse to
// ErrInvalidToken; only an authentic-but-expired token yields
// ErrExpiredToken.
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; a rule error means the
		// token decrypted fine but failed a validity rule
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	userID, err := token.GetString("user_id")
	if err != nil {
		return nil, ErrInvalidToken
	}

	username, err := token.GetString("username")
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		UserID:    userID,
		Username:  username,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
