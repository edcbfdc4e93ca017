package service

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTooManyAttempts     = errors.New("too many login attempts")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSmsRequestNotFound  = errors.New("sms request not found")
	ErrCatalogUnavailable  = errors.New("catalog database unavailable")
	ErrCatalogTableMissing = errors.New("catalog table missing")
	ErrCountryNotFound     = errors.New("country not found")
	ErrSeedForbidden       = errors.New("seed not permitted")
)

// ValidationError carries a client-facing message and matches ErrInvalidInput.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
