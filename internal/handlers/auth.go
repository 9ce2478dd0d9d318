package handlers

import (
	"errors"
	"net/http"

	"github.com/matchoracle/prediction-api/internal/auth"
	"github.com/matchoracle/prediction-api/internal/models"
)

// Login issues an access token
// @Summary Sign In
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "User"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.errorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.logger.Errorw("Login failed", "error", err, "user", req.UserID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.jsonResponse(w, http.StatusOK, resp)
}

// Logout revokes the current access token
// @Summary Sign Out
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.auth.Logout(r.Context(), auth.BearerToken(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
			h.errorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		h.logger.Errorw("Logout failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user
// @Summary Current User
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, currentUser(r))
}
