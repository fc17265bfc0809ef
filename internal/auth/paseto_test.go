package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestNewPasetoServiceKeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("too short"))
	require.Error(t, err)

	_, err = NewPasetoService(testKey(1))
	require.NoError(t, err)
}

func TestPasetoRoundTrip(t *testing.T) {
	svc, err := NewPasetoService(testKey(1))
	require.NoError(t, err)

	userID := uuid.New()
	token, err := svc.CreateToken(userID, "alice", time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestPasetoTampered(t *testing.T) {
	svc, err := NewPasetoService(testKey(1))
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), "alice", time.Hour)
	require.NoError(t, err)

	// Flip a character in the payload; the signature must no longer verify
	tampered := []byte(token)
	i := len(tampered) / 2
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}

	_, err = svc.VerifyToken(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoWrongKey(t *testing.T) {
	issuer, err := NewPasetoService(testKey(1))
	require.NoError(t, err)

	verifier, err := NewPasetoService(testKey(2))
	require.NoError(t, err)

	token, err := issuer.CreateToken(uuid.New(), "alice", time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoExpired(t *testing.T) {
	svc, err := NewPasetoService(testKey(1))
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), "alice", -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoMalformed(t *testing.T) {
	svc, err := NewPasetoService(testKey(1))
	require.NoError(t, err)

	for _, tokenStr := range []string{
		"",
		"not a token",
		"v4.local." + strings.Repeat("A", 64),
		"v2.local.AAAA", // unsupported version
	} {
		_, err := svc.VerifyToken(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tokenStr)
	}
}
