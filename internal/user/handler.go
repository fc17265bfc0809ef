package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/samueldev/signature-api/internal/httputil"
	"github.com/samueldev/signature-api/internal/logging"
)

// Handler contains HTTP handlers for the profile and listing endpoints.
// These mutate only fields orthogonal to the authentication lifecycle.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// UpdatePhoneRequest represents the phone update request body
type UpdatePhoneRequest struct {
	Phone string `json:"phone"`
}

// UpdateCompanyInfoRequest represents the company info update request body
type UpdateCompanyInfoRequest struct {
	CompanyName      string `json:"companyName"`
	MissionStatement string `json:"missionStatement"`
	CompanyAddress   string `json:"companyAddress"`
	CompanySite      string `json:"companySite"`
	UserTitle        string `json:"userTitle"`
}

// CountResponse represents the user count response
type CountResponse struct {
	Success   bool `json:"success"`
	UserCount int  `json:"userCount"`
}

// UpdatePhone handles phone number updates
// @Summary      Update phone number
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId query string true "Account identifier"
// @Param        request body UpdatePhoneRequest true "New phone number"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.MessageResponse "Missing phone or invalid id"
// @Failure      404 {object} httputil.MessageResponse "Unknown account"
// @Router       /api/v1/update-phone [put]
func (h *Handler) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var req UpdatePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Phone == "" {
		httputil.RespondError(w, "Phone number is required", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdatePhone(r.Context(), userID, req.Phone); err != nil {
		h.respondUpdateError(w, r.Context(), err, "failed to update phone")
		return
	}

	logger.Info("phone updated", "user_id", userID)
	httputil.RespondMessage(w, "Phone number updated successfully", http.StatusOK)
}

// UpdateCompanyInfo handles company profile updates
// @Summary      Update company information
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId query string true "Account identifier"
// @Param        request body UpdateCompanyInfoRequest true "Company fields"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.MessageResponse "Invalid id or body"
// @Failure      404 {object} httputil.MessageResponse "Unknown account"
// @Router       /api/v1/update-company-info [put]
func (h *Handler) UpdateCompanyInfo(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateCompanyInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	info := CompanyInfo{
		CompanyName:      req.CompanyName,
		MissionStatement: req.MissionStatement,
		CompanyAddress:   req.CompanyAddress,
		CompanySite:      req.CompanySite,
		UserTitle:        req.UserTitle,
	}

	if err := h.store.UpdateCompanyInfo(r.Context(), userID, info); err != nil {
		h.respondUpdateError(w, r.Context(), err, "failed to update company info")
		return
	}

	logger.Info("company info updated", "user_id", userID)
	httputil.RespondMessage(w, "Company information updated successfully", http.StatusOK)
}

// List handles the users listing. Admins receive every account; everyone
// else receives their own projection.
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} User
// @Failure      401 {object} httputil.MessageResponse "Unauthorized"
// @Router       /api/v1/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	caller, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Unauthorized: Please log in.", http.StatusUnauthorized)
		return
	}

	if !caller.Role.IsAdmin() {
		httputil.RespondJSON(w, caller, http.StatusOK)
		return
	}

	users, err := h.store.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondError(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}

// Count handles the account count endpoint
// @Summary      Count accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} CountResponse
// @Router       /api/v1/users/count [get]
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	count, err := h.store.Count(r.Context())
	if err != nil {
		logger.Error("failed to count users", "error", err.Error())
		httputil.RespondError(w, "Error fetching user count", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, CountResponse{Success: true, UserCount: count}, http.StatusOK)
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		httputil.RespondError(w, "userId is required", http.StatusBadRequest)
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondError(w, "invalid userId", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return userID, true
}

func (h *Handler) respondUpdateError(w http.ResponseWriter, ctx context.Context, err error, msg string) {
	logger := logging.GetLoggerFromContext(ctx)

	if errors.Is(err, ErrNotFound) {
		httputil.RespondError(w, "User not found", http.StatusNotFound)
		return
	}

	logger.Error(msg, "error", err.Error())
	httputil.RespondError(w, msg, http.StatusInternalServerError)
}
