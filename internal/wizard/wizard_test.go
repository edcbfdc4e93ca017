package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/models"
)

type MockClient struct {
	mock.Mock
}

func NewMockClient(t *testing.T) *MockClient {
	m := &MockClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockClient) RequestNumber(ctx context.Context, serviceID, countryID int) (Number, error) {
	args := m.Called(ctx, serviceID, countryID)
	n, _ := args.Get(0).(Number)
	return n, args.Error(1)
}

func (m *MockClient) CheckCode(ctx context.Context, requestID string) (string, error) {
	args := m.Called(ctx, requestID)
	return args.String(0), args.Error(1)
}

var (
	testServices = []models.Service{
		{ID: 1, Name: "WhatsApp", Available: true},
		{ID: 2, Name: "Telegram", Available: false},
	}
	testCountries = []models.Country{
		{ID: 1, Name: "United States", Available: true},
		{ID: 2, Name: "United Kingdom", Available: true},
	}
)

func newAtNumber(t *testing.T, client *MockClient) *Wizard {
	t.Helper()
	client.On("RequestNumber", mock.Anything, 1, 1).
		Return(Number{RequestID: "mock_1", PhoneNumber: "+15550001111", SmsRequestID: "sms_abc"}, nil).Once()

	w := New(client, testServices, testCountries)
	require.NoError(t, w.SelectService(1))
	require.NoError(t, w.SelectCountry(1))
	require.NoError(t, w.RequestNumber(t.Context()))
	require.Equal(t, StateNumber, w.State())
	return w
}

func TestNewFiltersUnavailable(t *testing.T) {
	w := New(NewMockClient(t), testServices, testCountries)

	assert.Equal(t, StateSelection, w.State())
	assert.Len(t, w.Services(), 1)
	assert.Len(t, w.Countries(), 2)
	assert.ErrorIs(t, w.SelectService(2), ErrUnavailableOption)
	assert.ErrorIs(t, w.SelectCountry(99), ErrUnavailableOption)
}

func TestRequestNumber(t *testing.T) {
	t.Run("requires both ids", func(t *testing.T) {
		w := New(NewMockClient(t), testServices, testCountries)
		require.NoError(t, w.SelectService(1))

		err := w.RequestNumber(t.Context())
		assert.ErrorIs(t, err, ErrSelectionIncomplete)
		assert.Equal(t, StateSelection, w.State())

		v := w.View()
		require.NotNil(t, v.Notice)
		assert.Equal(t, NoticeError, v.Notice.Level)
		assert.Equal(t, "Please select both a service and a country", v.Notice.Message)
	})

	t.Run("prefers internal request id", func(t *testing.T) {
		w := newAtNumber(t, NewMockClient(t))
		v := w.View()
		assert.Equal(t, "sms_abc", v.RequestID)
		assert.Equal(t, "+15550001111", v.PhoneNumber)
		assert.Nil(t, v.Notice)
	})

	t.Run("falls back to provider request id", func(t *testing.T) {
		client := NewMockClient(t)
		client.On("RequestNumber", mock.Anything, 1, 2).
			Return(Number{RequestID: "mock_2", PhoneNumber: "+15550002222"}, nil).Once()

		w := New(client, testServices, testCountries)
		require.NoError(t, w.SelectService(1))
		require.NoError(t, w.SelectCountry(2))
		require.NoError(t, w.RequestNumber(t.Context()))
		assert.Equal(t, "mock_2", w.View().RequestID)
	})

	t.Run("failure stays in selection", func(t *testing.T) {
		client := NewMockClient(t)
		client.On("RequestNumber", mock.Anything, 1, 1).
			Return(Number{}, &APIError{Status: 400, Message: "Insufficient balance"}).Once()

		w := New(client, testServices, testCountries)
		require.NoError(t, w.SelectService(1))
		require.NoError(t, w.SelectCountry(1))
		require.Error(t, w.RequestNumber(t.Context()))

		v := w.View()
		assert.Equal(t, StateSelection, v.State)
		require.NotNil(t, v.Notice)
		assert.Equal(t, "Insufficient balance", v.Notice.Message)
	})
}

func TestCheckCode(t *testing.T) {
	t.Run("no code yet is a warning", func(t *testing.T) {
		client := NewMockClient(t)
		w := newAtNumber(t, client)
		client.On("CheckCode", mock.Anything, "sms_abc").Return("", nil).Once()

		code, err := w.CheckCode(t.Context())
		require.NoError(t, err)
		assert.Empty(t, code)

		v := w.View()
		require.NotNil(t, v.Notice)
		assert.Equal(t, NoticeWarning, v.Notice.Level)
		assert.Equal(t, StateNumber, v.State)
	})

	t.Run("code clears notice", func(t *testing.T) {
		client := NewMockClient(t)
		w := newAtNumber(t, client)
		client.On("CheckCode", mock.Anything, "sms_abc").Return("", nil).Once()
		client.On("CheckCode", mock.Anything, "sms_abc").Return("123456", nil).Once()

		_, err := w.CheckCode(t.Context())
		require.NoError(t, err)
		code, err := w.CheckCode(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "123456", code)
		assert.Nil(t, w.View().Notice)
	})

	t.Run("transport error is recorded", func(t *testing.T) {
		client := NewMockClient(t)
		w := newAtNumber(t, client)
		client.On("CheckCode", mock.Anything, "sms_abc").Return("", errors.New("connection refused")).Once()

		_, err := w.CheckCode(t.Context())
		require.Error(t, err)
		v := w.View()
		require.NotNil(t, v.Notice)
		assert.Equal(t, "Failed to get SMS code", v.Notice.Message)
		assert.Equal(t, StateNumber, v.State)
	})

	t.Run("not allowed in selection", func(t *testing.T) {
		w := New(NewMockClient(t), testServices, testCountries)
		_, err := w.CheckCode(t.Context())
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestPayment(t *testing.T) {
	t.Run("requires a method", func(t *testing.T) {
		w := newAtNumber(t, NewMockClient(t))
		require.NoError(t, w.ProceedToPayment())

		assert.ErrorIs(t, w.CompletePayment(), ErrPaymentMethodRequired)
		assert.Equal(t, StatePayment, w.State())
		assert.ErrorIs(t, w.SelectPaymentMethod("cash"), ErrUnknownPaymentMethod)
	})

	for _, option := range PaymentOptions() {
		t.Run(string(option.Method), func(t *testing.T) {
			w := newAtNumber(t, NewMockClient(t))
			require.NoError(t, w.ProceedToPayment())
			require.NoError(t, w.SelectPaymentMethod(option.Method))
			require.NoError(t, w.CompletePayment())
			assert.Equal(t, StateCode, w.State())
		})
	}
}

func TestOutOfOrderCallsKeepState(t *testing.T) {
	w := New(NewMockClient(t), testServices, testCountries)

	assert.ErrorIs(t, w.ProceedToPayment(), ErrInvalidTransition)
	assert.ErrorIs(t, w.SelectPaymentMethod(PaymentPayPal), ErrInvalidTransition)
	assert.ErrorIs(t, w.CompletePayment(), ErrInvalidTransition)
	assert.ErrorIs(t, w.Reset(), ErrInvalidTransition)
	assert.Equal(t, StateSelection, w.State())

	client := NewMockClient(t)
	w = newAtNumber(t, client)
	assert.ErrorIs(t, w.SelectService(1), ErrInvalidTransition)
	assert.ErrorIs(t, w.RequestNumber(t.Context()), ErrInvalidTransition)
	assert.Equal(t, StateNumber, w.State())
}

func TestResetClearsState(t *testing.T) {
	client := NewMockClient(t)
	w := newAtNumber(t, client)
	client.On("CheckCode", mock.Anything, "sms_abc").Return("654321", nil).Once()

	require.NoError(t, w.ProceedToPayment())
	require.NoError(t, w.SelectPaymentMethod(PaymentMpesa))
	require.NoError(t, w.CompletePayment())
	_, err := w.CheckCode(t.Context())
	require.NoError(t, err)

	require.NoError(t, w.Reset())
	assert.Equal(t, View{State: StateSelection}, w.View())
}

func TestLookupPaymentMethod(t *testing.T) {
	opt, ok := LookupPaymentMethod(PaymentCryptomus)
	require.True(t, ok)
	assert.Equal(t, KindCryptoAddress, opt.Kind)

	opt, ok = LookupPaymentMethod(PaymentStripe)
	require.True(t, ok)
	assert.Equal(t, KindCardForm, opt.Kind)

	_, ok = LookupPaymentMethod("cash")
	assert.False(t, ok)
}

// startBlockedRequest runs RequestNumber in the background with the client
// call parked until release is closed.
func startBlockedRequest(t *testing.T, w *Wizard, client *MockClient, number Number) (release chan struct{}, result chan error) {
	t.Helper()
	entered := make(chan struct{})
	release = make(chan struct{})
	client.On("RequestNumber", mock.Anything, 1, 1).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(number, nil).Once()

	result = make(chan error, 1)
	go func() { result <- w.RequestNumber(context.Background()) }()
	<-entered
	return release, result
}

func TestRequestNumberDoesNotHoldLock(t *testing.T) {
	client := NewMockClient(t)
	w := New(client, testServices, testCountries)
	require.NoError(t, w.SelectService(1))
	require.NoError(t, w.SelectCountry(1))

	release, result := startBlockedRequest(t, w, client, Number{RequestID: "mock_1", PhoneNumber: "+15550001111"})

	assert.Equal(t, StateSelection, w.State())
	assert.Empty(t, w.View().PhoneNumber)
	assert.ErrorIs(t, w.RequestNumber(t.Context()), ErrRequestInFlight)

	close(release)
	require.NoError(t, <-result)
	assert.Equal(t, StateNumber, w.State())
	assert.Equal(t, "+15550001111", w.View().PhoneNumber)
}

func TestRequestNumberSupersededBySelectionChange(t *testing.T) {
	client := NewMockClient(t)
	w := New(client, testServices, testCountries)
	require.NoError(t, w.SelectService(1))
	require.NoError(t, w.SelectCountry(1))

	release, result := startBlockedRequest(t, w, client, Number{RequestID: "mock_1", PhoneNumber: "+15550001111"})
	require.NoError(t, w.SelectCountry(2))

	close(release)
	assert.ErrorIs(t, <-result, ErrSuperseded)
	assert.Equal(t, StateSelection, w.State())
	assert.Empty(t, w.View().PhoneNumber)
}

func TestCheckCodeDiscardedAfterReset(t *testing.T) {
	client := NewMockClient(t)
	w := newAtNumber(t, client)
	require.NoError(t, w.ProceedToPayment())
	require.NoError(t, w.SelectPaymentMethod(PaymentCryptomus))
	require.NoError(t, w.CompletePayment())

	entered := make(chan struct{})
	release := make(chan struct{})
	client.On("CheckCode", mock.Anything, "sms_abc").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return("123456", nil).Once()

	result := make(chan error, 1)
	go func() {
		_, err := w.CheckCode(context.Background())
		result <- err
	}()
	<-entered

	require.NoError(t, w.Reset())
	close(release)

	assert.ErrorIs(t, <-result, ErrSuperseded)
	v := w.View()
	assert.Equal(t, StateSelection, v.State)
	assert.Empty(t, v.Code)
}
