package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SmsStatus string

const (
	SmsStatusPending   SmsStatus = "PENDING"
	SmsStatusCompleted SmsStatus = "COMPLETED"
	// SmsStatusFailed is part of the stored vocabulary; no code path assigns it.
	SmsStatusFailed SmsStatus = "FAILED"
)

// SmsRequestIDPrefix marks identifiers issued by this service, as opposed to
// raw provider request ids.
const SmsRequestIDPrefix = "sms_"

type SmsRequest struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	ServiceID    int             `json:"serviceId"`
	CountryID    int             `json:"countryId"`
	PhoneNumber  string          `json:"phoneNumber"`
	APIRequestID string          `json:"apiRequestId"`
	Code         *string         `json:"code"`
	Status       SmsStatus       `json:"status"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
