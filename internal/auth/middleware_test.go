package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samueldev/signature-api/internal/user"
)

func newAuthenticatedFixture(t *testing.T) (*Middleware, *user.MemoryStore, *user.User, string) {
	t.Helper()

	store := user.NewMemoryStore()
	tokenService, err := NewPasetoService(testKey(3))
	require.NoError(t, err)

	hash, err := HashPassword("pw")
	require.NoError(t, err)

	account, err := store.Create(context.Background(), user.NewUser{
		Username:          "alice",
		Email:             "alice@x.com",
		PasswordHash:      hash,
		Phone:             "555-0100",
		VerificationToken: "tok",
		TokenExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, store.MarkVerified(context.Background(), account.ID))

	token, err := tokenService.CreateToken(account.ID, account.Username, time.Hour)
	require.NoError(t, err)

	return NewMiddleware(tokenService, store), store, account, token
}

// identityProbe records whether an identity reached the handler
func identityProbe(got **user.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := user.FromContext(r.Context()); ok {
			*got = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateSuccess(t *testing.T) {
	mw, _, account, token := newAuthenticatedFixture(t)

	var got *user.User
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.Authenticate(identityProbe(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, user.RoleStaff, got.Role)
}

func TestAuthenticatePassesThroughUnauthenticated(t *testing.T) {
	mw, store, account, token := newAuthenticatedFixture(t)

	expiredService, err := NewPasetoService(testKey(3))
	require.NoError(t, err)
	expired, err := expiredService.CreateToken(account.ID, account.Username, -time.Minute)
	require.NoError(t, err)

	otherKeyService, err := NewPasetoService(testKey(9))
	require.NoError(t, err)
	foreign, err := otherKeyService.CreateToken(account.ID, account.Username, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		setup  func()
	}{
		{"no token", "", nil},
		{"not a bearer scheme", "Basic dXNlcjpwdw==", nil},
		{"malformed token", "Bearer garbage", nil},
		{"expired token", "Bearer " + expired, nil},
		{"token signed with another key", "Bearer " + foreign, nil},
		{"subject no longer exists", "Bearer " + token, func() { store.Delete(account.ID) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}

			var got *user.User
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(identityProbe(&got)).ServeHTTP(rec, req)

			// The authenticator never fails the request; it only withholds
			// the identity
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Nil(t, got)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	mw, _, _, token := newAuthenticatedFixture(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		mw.Authenticate(mw.RequireAuth(next)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated request passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.Authenticate(mw.RequireAuth(next)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
