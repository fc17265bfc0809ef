package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/samueldev/signature-api/internal/httputil"
	"github.com/samueldev/signature-api/internal/logging"
	"github.com/samueldev/signature-api/internal/user"
)

// IPRateLimiter is the limiter surface the auth handlers use. The
// Redis-backed ratelimit.Limiter is the production implementation.
type IPRateLimiter interface {
	CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequest(ctx context.Context, ip, purpose string) error
}

// Handler contains HTTP handlers for the authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter IPRateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter IPRateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// SignupRequest represents the registration request body
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// SignupResponse represents the registration response
type SignupResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Email   string    `json:"email"`
	UserID  uuid.UUID `json:"userId"`
}

// Signup handles account registration
// @Summary      Register a new account
// @Description  Create a new account with username, password, email and phone. A verification email is sent; the account stays unverified until the link is followed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Registration attributes"
// @Success      200 {object} SignupResponse
// @Failure      400 {object} httputil.MessageResponse "Duplicate username or email, or invalid body"
// @Failure      502 {object} httputil.MessageResponse "Verification email could not be sent"
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.checkRateLimit(w, r, ip, "signup") {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" || req.Email == "" || req.Phone == "" {
		logger.Warn("signup failed: missing required fields")
		httputil.RespondError(w, "username, password, email and phone are required", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"username": req.Username})

	newUser, err := h.service.Register(r.Context(), RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateUsername):
			logger.Warn("signup failed: username already exists")
			httputil.RespondError(w, "Username already exists", http.StatusBadRequest)
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("signup failed: email already exists")
			httputil.RespondError(w, "Email already exists", http.StatusBadRequest)
		case errors.Is(err, ErrNotifierFailure):
			// The account is persisted at this point; only delivery failed
			logger.Error("signup: verification email delivery failed", "error", err.Error())
			httputil.RespondError(w, "Account created but the verification email could not be sent", http.StatusBadGateway)
		default:
			logger.Error("signup failed: internal error", "error", err.Error())
			httputil.RespondError(w, "failed to register user", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	httputil.RespondJSON(w, SignupResponse{
		Success:  true,
		Message:  "User registered successfully. Please verify your email.",
		Username: newUser.Username,
		Email:    newUser.Email,
	}, http.StatusOK)
}

// Verify handles email verification
// @Summary      Verify email address
// @Description  Consume a verification token from the emailed link and activate the account.
// @Tags         auth
// @Produce      plain
// @Param        token query string true "Verification token"
// @Success      200 {string} string "Email verified successfully!"
// @Failure      400 {string} string "Invalid or expired verification token"
// @Router       /auth/verify [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := r.URL.Query().Get("token")
	if token == "" {
		logger.Warn("verification failed: token missing")
		httputil.RespondText(w, "Invalid verification token", http.StatusBadRequest)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, ErrExpiredToken):
			logger.Warn("verification failed: token expired")
			httputil.RespondText(w, "Verification token has expired. Please request a new one.", http.StatusBadRequest)
		case errors.Is(err, ErrInvalidToken):
			logger.Warn("verification failed: invalid token")
			httputil.RespondText(w, "Invalid verification token", http.StatusBadRequest)
		default:
			logger.Error("verification failed: internal error", "error", err.Error())
			httputil.RespondText(w, "Failed to verify email", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("email verified")
	httputil.RespondText(w, "Email verified successfully!", http.StatusOK)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with email and password and receive a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.MessageResponse "Invalid request body"
// @Failure      401 {object} httputil.MessageResponse "Authentication failed"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.checkRateLimit(w, r, ip, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			// Wrong password, unknown email and unverified account all look
			// the same from the outside
			logger.Warn("login failed")
			httputil.RespondError(w, "Invalid email or password, or unverified email", http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in", "user_id", result.UserID)

	httputil.RespondJSON(w, LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   result.Token,
		Email:   result.Email,
		UserID:  result.UserID,
	}, http.StatusOK)
}

// Logout handles user logout
// @Summary      Log out
// @Description  Stateless logout; the client discards the bearer token.
// @Tags         auth
// @Produce      json
// @Success      200 {object} httputil.MessageResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	logger.Info("user logged out")

	// Bearer tokens are self-contained; there is no server-side session to
	// invalidate
	httputil.RespondMessage(w, "Logged out successfully. Please delete the token on your end.", http.StatusOK)
}

// checkRateLimit applies the fixed-window IP limit for the given purpose.
// Returns true when the request was rejected. Limiter errors fail open.
func (h *Handler) checkRateLimit(w http.ResponseWriter, r *http.Request, ip, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondError(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// getClientIP extracts the client IP, honoring X-Forwarded-For when set
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
