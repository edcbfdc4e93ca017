package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"sms-storefront/internal/models"
	"sms-storefront/internal/service"
	"sms-storefront/internal/util"
)

type creditRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r, "Failed to fetch balance")
	if user == nil {
		return
	}
	h.respondWithJSON(w, http.StatusOK, h.accounts.Balance(user))
}

// AddFunds credits the balance. No payment is taken.
func (h *Handler) AddFunds(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r, "Failed to add funds")
	if user == nil {
		return
	}

	var req creditRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, &service.ValidationError{Message: "Invalid amount"}, "")
		return
	}

	balance, err := h.accounts.Credit(r.Context(), user, req.Amount)
	if err != nil {
		h.respondWithError(w, err, "Failed to add funds")
		return
	}

	h.logger.Info("Funds added",
		util.String("user_id", user.ID),
		util.Stringer("amount", req.Amount),
	)
	h.respondWithJSON(w, http.StatusOK, balance)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r, "Failed to fetch transactions")
	if user == nil {
		return
	}

	txs, err := h.accounts.Transactions(r.Context(), user.ID)
	if err != nil {
		h.respondWithError(w, err, "Failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	h.respondWithJSON(w, http.StatusOK, txs)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r, "Failed to fetch user")
	if user == nil {
		return
	}
	h.respondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r, "Failed to update user")
	if user == nil {
		return
	}

	var req service.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err, "")
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user, req)
	if err != nil {
		h.respondWithError(w, err, "Failed to update user")
		return
	}
	h.respondWithJSON(w, http.StatusOK, updated)
}
