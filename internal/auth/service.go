package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samueldev/signature-api/internal/logging"
	"github.com/samueldev/signature-api/internal/user"
)

var (
	ErrAuthenticationFailed = errors.New("invalid email or password, or unverified email")
	ErrNotifierFailure      = errors.New("failed to send verification email")
)

// verificationTokenTTL is how long a freshly minted verification token
// stays redeemable.
const verificationTokenTTL = 24 * time.Hour

// Notifier delivers verification notifications. Delivery failure during
// registration is fatal for that call; the account stays persisted.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
}

// Service handles the credential lifecycle: registration, email
// verification and login.
type Service struct {
	store         user.Store
	tokenService  TokenService
	notifier      Notifier
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(
	store user.Store,
	tokenService TokenService,
	notifier Notifier,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		store:         store,
		tokenService:  tokenService,
		notifier:      notifier,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// RegisterInput carries the registration attributes. Shape validation is
// the transport layer's concern; the service enforces domain uniqueness.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Phone    string
}

// LoginResult is the public projection returned on successful login.
type LoginResult struct {
	Token  string
	UserID uuid.UUID
	Email  string
}

// Register creates a new unverified staff account and sends the
// verification email. Uniqueness failures surface as ErrDuplicateUsername /
// ErrDuplicateEmail. A notifier failure surfaces as ErrNotifierFailure with
// the account already persisted; recovery is a resend concern, not a
// registration rollback.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if _, err := s.store.GetByUsername(ctx, in.Username); err == nil {
		return nil, user.ErrDuplicateUsername
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.store.GetByEmail(ctx, in.Email); err == nil {
		return nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := GenerateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	newUser, err := s.store.Create(ctx, user.NewUser{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      passwordHash,
		Phone:             in.Phone,
		VerificationToken: verificationToken,
		TokenExpiresAt:    time.Now().Add(verificationTokenTTL),
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) || errors.Is(err, user.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.notifier.SendVerificationEmail(ctx, newUser.Email, verificationToken); err != nil {
		s.logger.Error("verification email delivery failed", "user_id", newUser.ID, "error", err)
		return newUser, fmt.Errorf("%w: %v", ErrNotifierFailure, err)
	}

	return newUser, nil
}

// VerifyEmail consumes a verification token and transitions the account to
// verified. A consumed token is indistinguishable from one that never
// existed: both fail with ErrInvalidToken. An expired token fails with
// ErrExpiredToken and is left in place so a resend flow can overwrite it.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	account, err := s.store.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to find user by token: %w", err)
	}

	if account.TokenExpiresAt == nil || time.Now().After(*account.TokenExpiresAt) {
		return ErrExpiredToken
	}

	if err := s.store.MarkVerified(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to mark user as verified: %w", err)
	}

	return nil
}

// decoyHash keeps the unknown-email path doing the same argon2 work as a
// real password check, so a store miss is not observable through timing.
var decoyHash, _ = HashPassword(uuid.NewString())

// Login authenticates by email and password and mints a bearer token.
// Unknown email, unverified account and wrong password all collapse into a
// single ErrAuthenticationFailed; a token is only ever issued for a
// verified account with a confirmed password match.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			VerifyPassword(decoyHash, password)
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(account.PasswordHash, password) {
		return nil, ErrAuthenticationFailed
	}

	if !account.Verified {
		return nil, ErrAuthenticationFailed
	}

	token, err := s.tokenService.CreateToken(account.ID, account.Username, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &LoginResult{
		Token:  token,
		UserID: account.ID,
		Email:  account.Email,
	}, nil
}
