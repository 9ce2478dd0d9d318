package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matchoracle/prediction-api/internal/auth"
	"github.com/matchoracle/prediction-api/internal/models"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check all dependencies
	checks := map[string]bool{
		"clickhouse": h.ch.Ping(ctx) == nil,
		"redis":      h.redis.Ping(ctx).Err() == nil,
		"auth":       !h.auth.State().IsLoading,
	}
	if h.pg != nil {
		checks["postgres"] = h.pg.Ping(ctx) == nil
	}
	if h.sqlite != nil {
		checks["sqlite"] = h.sqlite.PingContext(ctx) == nil
	}
	if h.ai != nil {
		checks["ai"] = h.ai.Ping(ctx) == nil
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !allHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": h.events.QueueDepth(),
	})
}

// RequireAuth validates the bearer token and puts the user on the context
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			h.errorResponse(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		user, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrTokenRevoked) {
				h.logger.Errorw("Token verification failed", "error", err)
			}
			h.errorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

// RequireAdmin validates the operator token for maintenance endpoints
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			h.errorResponse(w, http.StatusForbidden, "Admin endpoints are disabled")
			return
		}

		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			h.errorResponse(w, http.StatusUnauthorized, "Missing admin token")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			h.logger.Warnw("Rejected admin token", "path", r.URL.Path, "remote", r.RemoteAddr)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid admin token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// currentUser is only called behind RequireAuth
func currentUser(r *http.Request) *models.User {
	return auth.UserFromContext(r.Context())
}

// decodeBody reads a size-limited JSON body into dst and validates it.
// It writes the error response itself and reports whether to continue.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			h.errorResponse(w, http.StatusBadRequest, "Request body is empty")
		default:
			h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		}
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
