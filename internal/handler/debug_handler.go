package handler

import "net/http"

func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.diagnostics.Debug(r.Context()))
}

func (h *Handler) DebugEnvironment(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.diagnostics.Environment())
}
