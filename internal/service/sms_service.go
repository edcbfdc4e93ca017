package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sms-storefront/internal/events"
	"sms-storefront/internal/metrics"
	"sms-storefront/internal/models"
	"sms-storefront/internal/provider"
	"sms-storefront/internal/repository/redis"
	"sms-storefront/internal/util"
)

const (
	opRequestNumber = "request_number"
	opCheckCode     = "check_code"
)

// Masker fabricates stand-in values returned when an SMS operation fails.
type Masker interface {
	MockRequestID() string
	MockPhoneNumber() string
	MockCode() string
}

type NumberRequest struct {
	ServiceID int `json:"serviceId"`
	CountryID int `json:"countryId"`
}

type NumberResponse struct {
	RequestID    string `json:"request_id"`
	Number       string `json:"number"`
	SmsRequestID string `json:"smsRequestId,omitempty"`
	Masked       bool   `json:"-"`
}

type CodeResponse struct {
	SmsCode *string `json:"sms_code"`
	Status  string  `json:"status,omitempty"`
	Masked  bool    `json:"-"`
}

// SmsService leases numbers and relays codes. Once a request has passed
// validation, every failure is answered with mock data so the storefront
// always looks live; each masked failure is logged and counted.
type SmsService struct {
	provider     provider.Provider
	masker       Masker
	requests     *redis.SmsRequestStore
	accounts     *AccountService
	catalog      *CatalogService
	events       events.Publisher
	defaultPrice decimal.Decimal
	now          func() time.Time
}

func NewSmsService(
	p provider.Provider,
	masker Masker,
	requests *redis.SmsRequestStore,
	accounts *AccountService,
	catalog *CatalogService,
	publisher events.Publisher,
	defaultPrice decimal.Decimal,
) *SmsService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SmsService{
		provider:     p,
		masker:       masker,
		requests:     requests,
		accounts:     accounts,
		catalog:      catalog,
		events:       publisher,
		defaultPrice: defaultPrice,
		now:          time.Now,
	}
}

// MaskNumber records err and returns a fabricated number.
func (s *SmsService) MaskNumber(err error) NumberResponse {
	metrics.RecordSMSMaskedError(opRequestNumber)
	util.Error("Error getting number, returning mock response", util.ErrorField(err))
	return NumberResponse{
		RequestID: s.masker.MockRequestID(),
		Number:    s.masker.MockPhoneNumber(),
		Masked:    true,
	}
}

// MaskCode records err and returns a fabricated code.
func (s *SmsService) MaskCode(err error) CodeResponse {
	metrics.RecordSMSMaskedError(opCheckCode)
	util.Error("Error getting SMS code, returning mock response", util.ErrorField(err))
	code := s.masker.MockCode()
	return CodeResponse{SmsCode: &code, Masked: true}
}

// RequestNumber charges user for a number. Only validation and an
// insufficient balance are reported as errors.
func (s *SmsService) RequestNumber(ctx context.Context, user *models.User, req NumberRequest) (NumberResponse, error) {
	if req.ServiceID <= 0 || req.CountryID <= 0 {
		return NumberResponse{}, invalid("Service ID and Country ID are required")
	}

	price := s.defaultPrice
	if s.catalog != nil {
		price = s.catalog.ServicePrice(ctx, req.ServiceID, s.defaultPrice)
	}
	if user.Balance.LessThan(price) {
		return NumberResponse{}, ErrInsufficientBalance
	}

	leased, err := s.provider.RequestNumber(ctx, req.ServiceID, req.CountryID)
	if err != nil {
		return s.MaskNumber(err), nil
	}

	if err := s.accounts.Debit(ctx, user, price, "Purchased number "+leased.PhoneNumber); err != nil {
		return s.MaskNumber(err), nil
	}

	now := s.now().UTC()
	record := &models.SmsRequest{
		ID:           models.SmsRequestIDPrefix + uuid.NewString(),
		UserID:       user.ID,
		ServiceID:    req.ServiceID,
		CountryID:    req.CountryID,
		PhoneNumber:  leased.PhoneNumber,
		APIRequestID: leased.RequestID,
		Status:       models.SmsStatusPending,
		Price:        price,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.requests.Create(ctx, record); err != nil {
		// The user has paid for this lease; hand it over untracked. Its code
		// is still reachable through the provider request id.
		util.Error("Failed to record number request",
			util.String("user_id", user.ID),
			util.String("request_id", leased.RequestID),
			util.ErrorField(err),
		)
		return NumberResponse{RequestID: leased.RequestID, Number: leased.PhoneNumber}, nil
	}

	util.Info("Number leased",
		util.String("user_id", user.ID),
		util.String("sms_request_id", record.ID),
		util.String("provider", s.provider.Name()),
	)
	s.events.Publish(ctx, models.EventNumberRequested, user.ID, map[string]string{
		"sms_request_id": record.ID,
		"service_id":     strconv.Itoa(req.ServiceID),
		"country_id":     strconv.Itoa(req.CountryID),
		"price":          price.String(),
	})

	return NumberResponse{
		RequestID:    leased.RequestID,
		Number:       leased.PhoneNumber,
		SmsRequestID: record.ID,
	}, nil
}

// CheckCode polls for the code of requestID, which is either an id issued
// by RequestNumber or a raw provider request id. Only a missing id and an
// unknown issued id are reported as errors.
func (s *SmsService) CheckCode(ctx context.Context, requestID string) (CodeResponse, error) {
	if requestID == "" {
		return CodeResponse{}, invalid("Request ID is required")
	}

	if !strings.HasPrefix(requestID, models.SmsRequestIDPrefix) {
		result, err := s.provider.CheckCode(ctx, requestID)
		if err != nil {
			return s.MaskCode(err), nil
		}
		return codeResponse(result), nil
	}

	record, err := s.requests.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, redis.ErrSmsRequestNotFound) {
			return CodeResponse{}, ErrSmsRequestNotFound
		}
		return s.MaskCode(err), nil
	}

	if record.Status == models.SmsStatusCompleted && record.Code != nil {
		return CodeResponse{SmsCode: record.Code, Status: string(models.SmsStatusCompleted)}, nil
	}

	result, err := s.provider.CheckCode(ctx, record.APIRequestID)
	if err != nil {
		return s.MaskCode(err), nil
	}
	if result.Status != provider.CodeReceived {
		return codeResponse(result), nil
	}

	if err := s.requests.Complete(ctx, record, result.Code); err != nil {
		return s.MaskCode(err), nil
	}
	s.events.Publish(ctx, models.EventCodeReceived, record.UserID, map[string]string{
		"sms_request_id": record.ID,
	})
	return codeResponse(result), nil
}

func codeResponse(r provider.CodeResult) CodeResponse {
	if r.Status == provider.CodeReceived && r.Code != "" {
		code := r.Code
		return CodeResponse{SmsCode: &code, Status: string(models.SmsStatusCompleted)}
	}
	return CodeResponse{Status: string(models.SmsStatusPending)}
}
