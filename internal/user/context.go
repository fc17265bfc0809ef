package user

import "context"

type contextKey struct{}

// NewContext binds an authenticated account to the request context. The
// binding is request-scoped; nothing outlives the request.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext extracts the authenticated account, if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextKey{}).(*User)
	return u, ok
}
