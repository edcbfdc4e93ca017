package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sms-storefront/internal/models"
)

const defaultClientTimeout = 30 * time.Second

// APIError is a non-2xx response from the storefront API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
}

// APIClient talks to the storefront HTTP API. The session cookie set at
// signup or login is kept in a cookie jar and sent on later calls.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) (*APIClient, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

func (c *APIClient) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	var user models.User
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *APIClient) Countries(ctx context.Context) ([]models.Country, error) {
	var out []models.Country
	if err := c.do(ctx, http.MethodGet, "/api/countries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Services(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	if err := c.do(ctx, http.MethodGet, "/api/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Balance(ctx context.Context) (decimal.Decimal, error) {
	var out models.Balance
	if err := c.do(ctx, http.MethodGet, "/api/balance", nil, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Amount, nil
}

func (c *APIClient) RequestNumber(ctx context.Context, serviceID, countryID int) (Number, error) {
	var out struct {
		RequestID    string `json:"request_id"`
		Number       string `json:"number"`
		SmsRequestID string `json:"smsRequestId"`
	}
	body := map[string]int{"serviceId": serviceID, "countryId": countryID}
	if err := c.do(ctx, http.MethodPost, "/api/sms", body, &out); err != nil {
		return Number{}, err
	}
	return Number{RequestID: out.RequestID, PhoneNumber: out.Number, SmsRequestID: out.SmsRequestID}, nil
}

// CheckCode returns "" while no code has arrived.
func (c *APIClient) CheckCode(ctx context.Context, requestID string) (string, error) {
	var out struct {
		SmsCode *string `json:"sms_code"`
	}
	path := "/api/sms?requestId=" + url.QueryEscape(requestID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	if out.SmsCode == nil {
		return "", nil
	}
	return *out.SmsCode, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if dest == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
