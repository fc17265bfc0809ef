package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samueldev/signature-api/internal/auth"
	"github.com/samueldev/signature-api/internal/config"
	httpapi "github.com/samueldev/signature-api/internal/http"
	"github.com/samueldev/signature-api/internal/logging"
	"github.com/samueldev/signature-api/internal/user"
)

type recordingNotifier struct {
	tokens map[string]string // email -> last verification token
}

func (n *recordingNotifier) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	n.tokens[toEmail] = token
	return nil
}

type noopLimiter struct{}

func (noopLimiter) CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error) {
	return false, nil
}

func (noopLimiter) RecordIPRequest(ctx context.Context, ip, purpose string) error {
	return nil
}

type testAPI struct {
	router   http.Handler
	store    *user.MemoryStore
	notifier *recordingNotifier
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := user.NewMemoryStore()
	notifier := &recordingNotifier{tokens: make(map[string]string)}
	logger := logging.NewLogger(true)

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokenService, err := auth.NewPasetoService(key)
	require.NoError(t, err)

	svc := auth.NewService(store, tokenService, notifier, logger, 24*time.Hour)
	authHandler := auth.NewHandler(svc, noopLimiter{}, logger)
	authMiddleware := auth.NewMiddleware(tokenService, store)
	userHandler := user.NewHandler(store, logger)

	cfg := &config.Config{}
	cfg.Server.Env = "prod"

	router := httpapi.NewRouter(cfg, authHandler, authMiddleware, userHandler, logger)

	return &testAPI{router: router, store: store, notifier: notifier}
}

func (api *testAPI) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func (api *testAPI) signup(t *testing.T, username, password, email, phone string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"email":    email,
		"phone":    phone,
	})
	require.NoError(t, err)
	return api.do(t, http.MethodPost, "/auth/signup", string(body), "")
}

func (api *testAPI) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	return api.do(t, http.MethodPost, "/auth/login", string(body), "")
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAccountLifecycle(t *testing.T) {
	api := newTestAPI(t)

	// Register
	rec := api.signup(t, "alice", "pw1", "alice@x.com", "555")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "alice", resp["username"])
	assert.Equal(t, "alice@x.com", resp["email"])

	// Login before verification is rejected
	rec = api.login(t, "alice@x.com", "pw1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Verify
	token := api.notifier.tokens["alice@x.com"]
	require.NotEmpty(t, token)
	rec = api.do(t, http.MethodGet, "/auth/verify?token="+token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email verified successfully!", rec.Body.String())

	// Second verification attempt with the consumed token fails
	rec = api.do(t, http.MethodGet, "/auth/verify?token="+token, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Login
	rec = api.login(t, "alice@x.com", "pw1")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeJSON(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "alice@x.com", resp["email"])
	bearer, _ := resp["token"].(string)
	require.NotEmpty(t, bearer)

	// An authenticated staff request to /users returns the caller's own
	// projection
	rec = api.do(t, http.MethodGet, "/api/v1/users", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	self := decodeJSON(t, rec)
	assert.Equal(t, "alice", self["username"])
	assert.Equal(t, resp["userId"], self["id"])

	// Logout is stateless
	rec = api.do(t, http.MethodPost, "/auth/logout", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)

	rec := api.signup(t, "bob", "pw", "bob@x.com", "555")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.signup(t, "robert", "pw", "bob@x.com", "555")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Email already exists", resp["message"])

	count, err := api.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSignupDuplicateUsername(t *testing.T) {
	api := newTestAPI(t)

	rec := api.signup(t, "bob", "pw", "bob@x.com", "555")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.signup(t, "bob", "pw", "other@x.com", "555")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username already exists", decodeJSON(t, rec)["message"])
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	api := newTestAPI(t)

	for _, bearer := range []string{"", "not-a-token"} {
		rec := api.do(t, http.MethodGet, "/api/v1/users", "", bearer)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = api.do(t, http.MethodGet, "/api/v1/users/count", "", bearer)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestAdminListing(t *testing.T) {
	api := newTestAPI(t)

	api.signup(t, "root", "pw", "root@x.com", "555")
	api.signup(t, "alice", "pw", "alice@x.com", "555")
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/auth/verify?token="+api.notifier.tokens["root@x.com"], "", "").Code)

	admin, err := api.store.GetByEmail(context.Background(), "root@x.com")
	require.NoError(t, err)
	api.store.SetRole(admin.ID, user.RoleAdmin)

	rec := api.login(t, "root@x.com", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	bearer, _ := decodeJSON(t, rec)["token"].(string)

	rec = api.do(t, http.MethodGet, "/api/v1/users", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing, 2)
}

func TestProfileUpdates(t *testing.T) {
	api := newTestAPI(t)

	api.signup(t, "alice", "pw", "alice@x.com", "555")
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/auth/verify?token="+api.notifier.tokens["alice@x.com"], "", "").Code)

	rec := api.login(t, "alice@x.com", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	bearer, _ := resp["token"].(string)
	userID, _ := resp["userId"].(string)

	rec = api.do(t, http.MethodPut, "/api/v1/update-phone?userId="+userID, `{"phone":"555-0199"}`, bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/update-company-info?userId="+userID,
		`{"companyName":"Acme","missionStatement":"Ship it","companyAddress":"1 Main St","companySite":"acme.test","userTitle":"CEO"}`, bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	account, err := api.store.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "555-0199", account.Phone)
	assert.Equal(t, "Acme", account.CompanyName)
	assert.Equal(t, "CEO", account.UserTitle)

	// Unknown identifiers are a 404, not a silent success
	rec = api.do(t, http.MethodPut, "/api/v1/update-phone?userId="+uuid.NewString(), `{"phone":"555"}`, bearer)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing phone is rejected
	rec = api.do(t, http.MethodPut, "/api/v1/update-phone?userId="+userID, `{}`, bearer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserCount(t *testing.T) {
	api := newTestAPI(t)

	api.signup(t, "alice", "pw", "alice@x.com", "555")
	api.signup(t, "bob", "pw", "bob@x.com", "555")
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/auth/verify?token="+api.notifier.tokens["alice@x.com"], "", "").Code)

	rec := api.login(t, "alice@x.com", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	bearer, _ := decodeJSON(t, rec)["token"].(string)

	rec = api.do(t, http.MethodGet, "/api/v1/users/count", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(2), resp["userCount"])
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
