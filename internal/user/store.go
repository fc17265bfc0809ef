package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// NewUser carries the attributes of an account at creation time.
type NewUser struct {
	Username          string
	Email             string
	PasswordHash      string
	Phone             string
	VerificationToken string
	TokenExpiresAt    time.Time
}

// Store is the persistence abstraction for accounts. The bun Repository is
// the production implementation; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, nu NewUser) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error
	UpdateCompanyInfo(ctx context.Context, id uuid.UUID, info CompanyInfo) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*User, error)
}
