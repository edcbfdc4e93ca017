package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sms-storefront/internal/models"
	"sms-storefront/internal/service"
	"sms-storefront/internal/util"
)

// Options configure the session cookie.
type Options struct {
	CookieName    string
	SecureCookies bool
}

// Handler serves the JSON API.
type Handler struct {
	auth        *service.AuthService
	accounts    *service.AccountService
	catalog     *service.CatalogService
	sms         *service.SmsService
	diagnostics *service.DiagnosticsService
	opts        Options
	logger      *zap.Logger
}

func NewHandler(services *service.ServiceFactory, opts Options, logger *zap.Logger) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "session_id"
	}
	if logger == nil {
		logger = util.Named("http")
	}
	return &Handler{
		auth:        services.AuthService(),
		accounts:    services.AccountService(),
		catalog:     services.CatalogService(),
		sms:         services.SmsService(),
		diagnostics: services.DiagnosticsService(),
		opts:        opts,
		logger:      logger,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type authErrorBody struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// respondWithJSON sends a JSON response
func (h *Handler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError maps err to a status and message. fallback is used as the
// message for errors without a client-facing description, so internal
// details never leave the process.
func (h *Handler) respondWithError(w http.ResponseWriter, err error, fallback string) {
	status, message := h.describe(err, fallback)
	h.respondWithJSON(w, status, errorBody{Error: message})
}

func (h *Handler) respondWithAuthError(w http.ResponseWriter, err error, fallback string) {
	status, message := h.describe(err, fallback)
	h.respondWithJSON(w, status, authErrorBody{Error: message})
}

func (h *Handler) describe(err error, fallback string) (int, string) {
	status := getStatusCode(err)
	message := errorMessage(err)
	if message == "" {
		message = fallback
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("HTTP error response",
			util.ErrorField(err),
			util.Int("status_code", status),
			util.String("message", message),
		)
	} else {
		h.logger.Debug("HTTP error response",
			util.ErrorField(err),
			util.Int("status_code", status),
		)
	}
	return status, message
}

// getStatusCode determines the appropriate HTTP status code for an error
func getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotAuthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSeedForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSmsRequestNotFound),
		errors.Is(err, service.ErrCountryNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrStoreUnavailable),
		errors.Is(err, service.ErrCatalogUnavailable),
		errors.Is(err, service.ErrCatalogTableMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.Is(err, service.ErrNotAuthenticated):
		return "Not authenticated"
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, service.ErrEmailExists):
		return "Email already in use"
	case errors.Is(err, service.ErrTooManyAttempts):
		return "Too many login attempts, try again later"
	case errors.Is(err, service.ErrInsufficientBalance):
		return "Insufficient balance"
	case errors.Is(err, service.ErrSmsRequestNotFound):
		return "SMS request not found"
	case errors.Is(err, service.ErrCountryNotFound):
		return "Country not found"
	case errors.Is(err, service.ErrCatalogUnavailable):
		return "Database connection unavailable"
	case errors.Is(err, service.ErrCatalogTableMissing):
		return "Countries table doesn't exist"
	case errors.Is(err, service.ErrSeedForbidden):
		return "Unauthorized"
	default:
		return ""
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &service.ValidationError{Message: "Invalid JSON request body"}
	}
	return nil
}

func (h *Handler) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(h.opts.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSessionCookie lets the cookie live exactly as long as the server-side
// session.
func (h *Handler) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.auth.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentUser resolves the session cookie. On failure it writes the error
// response and returns nil.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request, fallback string) *models.User {
	user, err := h.auth.ResolveSession(r.Context(), h.sessionID(r))
	if err != nil {
		h.respondWithError(w, err, fallback)
		return nil
	}
	return user
}
