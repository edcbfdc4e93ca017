package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sms-storefront/internal/client"
	"sms-storefront/internal/models"
)

const (
	smsPrefix             = "sms:"
	userSmsRequestsSuffix = ":sms"
)

type SmsRequestStore struct {
	client client.KVClient
	now    func() time.Time
}

func NewSmsRequestStore(kv client.KVClient) *SmsRequestStore {
	return &SmsRequestStore{client: kv, now: time.Now}
}

func (s *SmsRequestStore) Create(ctx context.Context, req *models.SmsRequest) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	fields := map[string]string{
		"id":             req.ID,
		"user_id":        req.UserID,
		"service_id":     strconv.Itoa(req.ServiceID),
		"country_id":     strconv.Itoa(req.CountryID),
		"phone_number":   req.PhoneNumber,
		"api_request_id": req.APIRequestID,
		"status":         string(req.Status),
		"price":          req.Price.String(),
		"created_at":     formatTime(req.CreatedAt),
		"updated_at":     formatTime(req.UpdatedAt),
	}
	if req.Code != nil {
		fields["code"] = *req.Code
	}

	if err := s.client.HSet(ctx, smsPrefix+req.ID, fields); err != nil {
		return fmt.Errorf("failed to store sms request: %w", err)
	}
	if err := s.client.LPush(ctx, userPrefix+req.UserID+userSmsRequestsSuffix, req.ID); err != nil {
		_ = s.client.Del(ctx, smsPrefix+req.ID)
		return fmt.Errorf("failed to index sms request: %w", err)
	}
	return nil
}

func (s *SmsRequestStore) Get(ctx context.Context, id string) (*models.SmsRequest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	f, err := s.client.HGetAll(ctx, smsPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("failed to load sms request: %w", err)
	}
	if len(f) == 0 {
		return nil, ErrSmsRequestNotFound
	}

	price, err := parseDecimal("price", f["price"])
	if err != nil {
		return nil, err
	}
	req := &models.SmsRequest{
		ID:           f["id"],
		UserID:       f["user_id"],
		ServiceID:    parseInt(f["service_id"]),
		CountryID:    parseInt(f["country_id"]),
		PhoneNumber:  f["phone_number"],
		APIRequestID: f["api_request_id"],
		Status:       models.SmsStatus(f["status"]),
		Price:        price,
		CreatedAt:    parseTime(f["created_at"]),
		UpdatedAt:    parseTime(f["updated_at"]),
	}
	if code, ok := f["code"]; ok && code != "" {
		req.Code = &code
	}
	return req, nil
}

// Complete records the received code and moves the request to COMPLETED.
func (s *SmsRequestStore) Complete(ctx context.Context, req *models.SmsRequest, code string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := s.now()
	err := s.client.HSet(ctx, smsPrefix+req.ID, map[string]string{
		"code":       code,
		"status":     string(models.SmsStatusCompleted),
		"updated_at": formatTime(now),
	})
	if err != nil {
		return fmt.Errorf("failed to complete sms request: %w", err)
	}

	req.Code = &code
	req.Status = models.SmsStatusCompleted
	req.UpdatedAt = now
	return nil
}
