package handler

import (
	"errors"
	"net/http"

	"sms-storefront/internal/service"
)

// RequestNumber leases a number for the session user. Authentication,
// missing ids and an insufficient balance are reported; anything else,
// an unreadable body included, is answered with a mock number.
func (h *Handler) RequestNumber(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.ResolveSession(r.Context(), h.sessionID(r))
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) || errors.Is(err, service.ErrUserNotFound) {
			h.respondWithError(w, err, "")
			return
		}
		h.respondWithJSON(w, http.StatusOK, h.sms.MaskNumber(err))
		return
	}

	var req service.NumberRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithJSON(w, http.StatusOK, h.sms.MaskNumber(err))
		return
	}

	resp, err := h.sms.RequestNumber(r.Context(), user, req)
	if err != nil {
		h.respondWithError(w, err, "")
		return
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}

// CheckCode polls for a verification code by request id.
func (h *Handler) CheckCode(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sms.CheckCode(r.Context(), r.URL.Query().Get("requestId"))
	if err != nil {
		h.respondWithError(w, err, "")
		return
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}
