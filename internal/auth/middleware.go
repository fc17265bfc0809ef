package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/samueldev/signature-api/internal/httputil"
	"github.com/samueldev/signature-api/internal/user"
)

// Middleware resolves bearer tokens into request-scoped identities.
type Middleware struct {
	tokenService TokenService
	store        user.Store
}

func NewMiddleware(tokenService TokenService, store user.Store) *Middleware {
	return &Middleware{tokenService: tokenService, store: store}
}

// Authenticate runs once per request ahead of any protected handler. A
// missing, malformed or expired token, or a subject that no longer resolves
// to a live account, all degrade to an unauthenticated context; this layer
// never fails the request. On success the resolved account is bound to the
// request context and discarded when the request ends.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		// Re-resolve the subject on every request so role and verification
		// changes are visible immediately
		account, err := m.store.GetByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := user.NewContext(r.Context(), account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that reached a protected handler without an
// authenticated identity. The authorization decision lives here, not in
// Authenticate.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := user.FromContext(r.Context()); !ok {
			httputil.RespondError(w, "Unauthorized: Please log in.", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
