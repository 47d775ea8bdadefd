package http

import (
	"log/slog"
	"net/http"

	"github.com/beatx/beatx-server/internal/service"
	"github.com/beatx/beatx-server/pkg/httputil"
)

// AuthHandler handles the account endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates the auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SignUpRequest is the JSON body for POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the JSON body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest is the JSON body for POST /auth/update.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=80"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
	Password    string `json:"password" validate:"omitempty,min=6"`
}

// --- Handlers ---

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	data := map[string]any{}
	if result.User != nil {
		data["user"] = result.User
	}
	if result.Session != nil {
		data["session"] = result.Session
	}
	httputil.OK(w, http.StatusOK, result.Message, data)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, profile, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "login successful", map[string]any{
		"session": session,
		"user":    profile,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "token refreshed", map[string]any{"session": session})
}

// Logout handles POST /auth/logout. It is mounted outside the authorization
// gate and reads the header itself: revoking a token must work even when
// that token would no longer pass the gate.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "logged out", nil)
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}
	token, _ := TokenFromContext(r.Context())

	profile, err := h.service.Profile(r.Context(), claims, token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "profile fetched", map[string]any{"user": profile})
}

// Update handles POST /auth/update.
func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	var req UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DisplayName == "" && req.AvatarURL == "" && req.Password == "" {
		httputil.Fail(w, http.StatusBadRequest, "nothing to update")
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), claims.UserID(), service.UpdateProfileParams{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Password:    req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "profile updated", map[string]any{"user": profile})
}

