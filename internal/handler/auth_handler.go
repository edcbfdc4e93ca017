package handler

import (
	"errors"
	"net/http"
	"time"

	"sms-storefront/internal/models"
	"sms-storefront/internal/service"
	"sms-storefront/internal/util"
)

type authResponse struct {
	*models.User
	Success bool `json:"success"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Signup creates an account and opens a session.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req service.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithAuthError(w, err, "")
		return
	}

	user, session, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			h.respondWithAuthError(w, err, "User registration service unavailable")
			return
		}
		h.respondWithAuthError(w, err, "Failed to sign up")
		return
	}

	h.setSessionCookie(w, session)
	h.respondWithJSON(w, http.StatusOK, authResponse{User: user, Success: true})
	h.logger.Info("User signed up via HTTP",
		util.String("user_id", user.ID),
		util.Duration("duration", time.Since(start)),
	)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithAuthError(w, err, "")
		return
	}

	user, session, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			h.respondWithAuthError(w, err, "Authentication service unavailable")
			return
		}
		h.respondWithAuthError(w, err, "Failed to log in")
		return
	}

	h.setSessionCookie(w, session)
	h.respondWithJSON(w, http.StatusOK, authResponse{User: user, Success: true})
}

// Logout clears the cookie even when the session was already gone.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.sessionID(r)); err != nil {
		h.respondWithError(w, err, "Failed to log out")
		return
	}
	h.clearSessionCookie(w)
	h.respondWithJSON(w, http.StatusOK, messageResponse{Success: true})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Refresh(r.Context(), h.sessionID(r))
	if err != nil {
		h.respondWithError(w, err, "Failed to refresh session")
		return
	}
	h.setSessionCookie(w, session)
	h.respondWithJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Session refreshed"})
}
