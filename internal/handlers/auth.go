package handlers

import (
	"encoding/json"
	"net/http"

	"relief-backend/internal/middleware"
	"relief-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and profile requests
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PushTokenRequest carries an APNs device token
type PushTokenRequest struct {
	PushToken string `json:"push_token"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "register")
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("User registered")

	respondJSON(w, http.StatusCreated, StatusResponse{Status: http.StatusCreated, Detail: "User registered successfully"})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "login")
		return
	}

	log.Info().Int64("user_id", resp.UserID).Msg("User logged in")

	respondJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	resp, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(w, err, "refresh")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.UserFrom(r.Context()))
}

// UpdatePushToken handles PUT /auth/push-token. An empty token unsubscribes.
func (h *AuthHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.UpdatePushToken(r.Context(), user, req.PushToken); err != nil {
		respondServiceError(w, err, "update push token")
		return
	}

	log.Info().Int64("user_id", user.ID).Bool("cleared", req.PushToken == "").Msg("Push token updated")

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Push token updated"})
}
