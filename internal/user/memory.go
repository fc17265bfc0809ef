package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation used in tests and local
// development. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]*User)}
}

func (s *MemoryStore) Create(ctx context.Context, nu NewUser) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == nu.Username {
			return nil, ErrDuplicateUsername
		}
		if u.Email == nu.Email {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now()
	token := nu.VerificationToken
	expiresAt := nu.TokenExpiresAt

	u := &User{
		ID:                uuid.New(),
		Username:          nu.Username,
		Email:             nu.Email,
		PasswordHash:      nu.PasswordHash,
		Phone:             nu.Phone,
		Role:              RoleStaff,
		Verified:          false,
		VerificationToken: &token,
		TokenExpiresAt:    &expiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.users[u.ID] = u

	return copyUser(u), nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.find(func(u *User) bool { return u.Email == email })
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.find(func(u *User) bool { return u.Username == username })
}

func (s *MemoryStore) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	return s.find(func(u *User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.find(func(u *User) bool { return u.ID == id })
}

func (s *MemoryStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return s.update(id, func(u *User) {
		u.Verified = true
		u.VerificationToken = nil
		u.TokenExpiresAt = nil
	})
}

func (s *MemoryStore) UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error {
	return s.update(id, func(u *User) {
		u.Phone = phone
	})
}

func (s *MemoryStore) UpdateCompanyInfo(ctx context.Context, id uuid.UUID, info CompanyInfo) error {
	return s.update(id, func(u *User) {
		u.CompanyName = info.CompanyName
		u.MissionStatement = info.MissionStatement
		u.CompanyAddress = info.CompanyAddress
		u.CompanySite = info.CompanySite
		u.UserTitle = info.UserTitle
	})
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	return users, nil
}

// Delete removes an account. Not part of Store; used to simulate a subject
// that no longer resolves.
func (s *MemoryStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// SetRole overrides an account's role. Not part of Store; used to set up
// admin accounts.
func (s *MemoryStore) SetRole(id uuid.UUID, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Role = role
	}
}

func (s *MemoryStore) find(match func(*User) bool) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) update(id uuid.UUID, apply func(*User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	apply(u)
	u.UpdatedAt = time.Now()
	return nil
}

func copyUser(u *User) *User {
	c := *u
	if u.VerificationToken != nil {
		token := *u.VerificationToken
		c.VerificationToken = &token
	}
	if u.TokenExpiresAt != nil {
		expiresAt := *u.TokenExpiresAt
		c.TokenExpiresAt = &expiresAt
	}
	return &c
}
