package wizard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the endpoints the wizard uses and records every path hit.
type fakeAPI struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeAPI) hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.paths {
		if p == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/auth/signup":
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "sess-1", Path: "/"})
		_, _ = w.Write([]byte(`{"id":"u1","name":"Ann","email":"ann@example.com","balance":10,"success":true}`))
	case r.URL.Path == "/api/services":
		_, _ = w.Write([]byte(`[{"id":1,"name":"WhatsApp","price":4,"available":true}]`))
	case r.URL.Path == "/api/countries":
		_, _ = w.Write([]byte(`[{"id":1,"name":"United States","iso":"US","available":true}]`))
	case r.URL.Path == "/api/sms" && r.Method == http.MethodPost:
		if c, err := r.Cookie("session_id"); err != nil || c.Value != "sess-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Not authenticated"}`))
			return
		}
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["serviceId"] != 1 || body["countryId"] != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"request_id":"mock_1","number":"+15550001111","smsRequestId":"sms_1"}`))
	case r.URL.Path == "/api/sms":
		if r.URL.Query().Get("requestId") != "sms_1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"SMS request not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"sms_code":"123456","status":"COMPLETED"}`))
	case r.URL.Path == "/api/balance":
		_, _ = w.Write([]byte(`{"userId":"u1","amount":10}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	}
}

func newFakeAPI(t *testing.T) (*fakeAPI, *APIClient) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewAPIClient(srv.URL+"/", srv.Client())
	require.NoError(t, err)
	return api, client
}

func TestAPIClientSessionCookie(t *testing.T) {
	_, client := newFakeAPI(t)

	_, err := client.RequestNumber(t.Context(), 1, 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not authenticated", apiErr.Message)

	user, err := client.Signup(t.Context(), "Ann", "ann@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	number, err := client.RequestNumber(t.Context(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Number{RequestID: "mock_1", PhoneNumber: "+15550001111", SmsRequestID: "sms_1"}, number)
}

func TestAPIClientCheckCode(t *testing.T) {
	_, client := newFakeAPI(t)

	code, err := client.CheckCode(t.Context(), "sms_1")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	_, err = client.CheckCode(t.Context(), "sms_unknown")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestWizardReachesCodeWithoutBalanceCall(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := t.Context()

	_, err := client.Signup(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)
	services, err := client.Services(ctx)
	require.NoError(t, err)
	countries, err := client.Countries(ctx)
	require.NoError(t, err)

	w := New(client, services, countries)
	require.NoError(t, w.SelectService(1))
	require.NoError(t, w.SelectCountry(1))
	require.NoError(t, w.RequestNumber(ctx))
	assert.Equal(t, "sms_1", w.View().RequestID)

	require.NoError(t, w.ProceedToPayment())
	require.NoError(t, w.SelectPaymentMethod(PaymentCryptomus))
	require.NoError(t, w.CompletePayment())
	assert.Equal(t, StateCode, w.State())

	code, err := w.CheckCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	assert.Zero(t, api.hits("/api/balance"))
}
