package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/samueldev/signature-api/internal/database"
)

// Repository handles account persistence on Postgres via bun.
type Repository struct {
	db *bun.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new unverified account
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	token := nu.VerificationToken
	expiresAt := nu.TokenExpiresAt

	dbUser := &database.User{
		Username:          nu.Username,
		Email:             nu.Email,
		PasswordHash:      nu.PasswordHash,
		Phone:             nu.Phone,
		Role:              string(RoleStaff),
		Verified:          false,
		VerificationToken: &token,
		TokenExpiresAt:    &expiresAt,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			if strings.Contains(err.Error(), "users_username_idx") {
				return nil, ErrDuplicateUsername
			}
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves an account by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByUsername retrieves an account by username
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, "username = ?", username)
}

// GetByVerificationToken retrieves an unverified account holding the token
func (r *Repository) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	return r.getOne(ctx, "verification_token = ?", token)
}

// GetByID retrieves an account by its identifier
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where(where, arg).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// MarkVerified flips the account to verified and clears the token fields
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("verified = ?", true).
		Set("verification_token = ?", nil).
		Set("token_expires_at = ?", nil).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark user as verified: %w", err)
	}

	return checkAffected(result)
}

// UpdatePhone replaces the account's phone number
func (r *Repository) UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("phone = ?", phone).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update phone: %w", err)
	}

	return checkAffected(result)
}

// UpdateCompanyInfo replaces the free-form profile fields
func (r *Repository) UpdateCompanyInfo(ctx context.Context, id uuid.UUID, info CompanyInfo) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("company_name = ?", info.CompanyName).
		Set("mission_statement = ?", info.MissionStatement).
		Set("company_address = ?", info.CompanyAddress).
		Set("company_site = ?", info.CompanySite).
		Set("user_title = ?", info.UserTitle).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update company info: %w", err)
	}

	return checkAffected(result)
}

// Count returns the total number of accounts
func (r *Repository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// List returns all accounts ordered by creation time
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	var dbUsers []*database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for _, dbu := range dbUsers {
		users = append(users, mapDBUserToModel(dbu))
	}

	return users, nil
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts the database row model to the domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                dbu.ID,
		Username:          dbu.Username,
		Email:             dbu.Email,
		PasswordHash:      dbu.PasswordHash,
		Phone:             dbu.Phone,
		Role:              ParseRole(dbu.Role),
		Verified:          dbu.Verified,
		VerificationToken: dbu.VerificationToken,
		TokenExpiresAt:    dbu.TokenExpiresAt,
		CompanyName:       dbu.CompanyName,
		MissionStatement:  dbu.MissionStatement,
		CompanyAddress:    dbu.CompanyAddress,
		CompanySite:       dbu.CompanySite,
		UserTitle:         dbu.UserTitle,
		CreatedAt:         dbu.CreatedAt,
		UpdatedAt:         dbu.UpdatedAt,
	}
}
