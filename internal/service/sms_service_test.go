package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/models"
	"sms-storefront/internal/provider"
	"sms-storefront/internal/repository/redis"
)

type failingProvider struct {
	err error
}

func (p failingProvider) Name() string { return "failing" }

func (p failingProvider) RequestNumber(context.Context, int, int) (provider.NumberResult, error) {
	return provider.NumberResult{}, p.err
}

func (p failingProvider) CheckCode(context.Context, string) (provider.CodeResult, error) {
	return provider.CodeResult{}, p.err
}

func TestSmsService_RequestNumber(t *testing.T) {
	t.Run("leases a number and debits the service price", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		user, _ := env.signup(t, "ann@example.com")

		resp, err := env.sms.RequestNumber(t.Context(), user, NumberRequest{ServiceID: 1, CountryID: 1})
		require.NoError(t, err)
		assert.False(t, resp.Masked)
		assert.True(t, strings.HasPrefix(resp.RequestID, "mock_"))
		assert.True(t, strings.HasPrefix(resp.Number, "+1"))
		assert.True(t, strings.HasPrefix(resp.SmsRequestID, models.SmsRequestIDPrefix))

		// WhatsApp costs 4.00 in the built-in catalog.
		assert.Equal(t, "6", user.Balance.String())

		txs, err := env.accounts.Transactions(t.Context(), user.ID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionDebit, txs[0].Type)
		assert.Equal(t, "4", txs[0].Amount.String())

		record, err := redis.NewSmsRequestStore(env.kv).Get(t.Context(), resp.SmsRequestID)
		require.NoError(t, err)
		assert.Equal(t, models.SmsStatusPending, record.Status)
		assert.Equal(t, resp.RequestID, record.APIRequestID)
		assert.Equal(t, user.ID, record.UserID)
	})

	t.Run("missing ids", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		user, _ := env.signup(t, "ann@example.com")

		_, err := env.sms.RequestNumber(t.Context(), user, NumberRequest{ServiceID: 1})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		user, _ := env.signup(t, "ann@example.com")
		user.Balance = decimal.RequireFromString("0.10")

		_, err := env.sms.RequestNumber(t.Context(), user, NumberRequest{ServiceID: 1, CountryID: 1})
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("provider failure is masked and nothing is charged", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		env.sms.provider = failingProvider{err: errors.New("upstream down")}
		user, _ := env.signup(t, "ann@example.com")

		resp, err := env.sms.RequestNumber(t.Context(), user, NumberRequest{ServiceID: 1, CountryID: 1})
		require.NoError(t, err)
		assert.True(t, resp.Masked)
		assert.True(t, strings.HasPrefix(resp.RequestID, "mock_"))
		assert.Empty(t, resp.SmsRequestID)
		assert.Equal(t, "10", user.Balance.String())
	})

	t.Run("paid lease is handed over when it cannot be recorded", func(t *testing.T) {
		base := newTestEnv(t, nil, CatalogOptions{})
		kv := &failingHashKV{KVClient: base.kv, prefix: "sms:", field: "api_request_id", fail: true}
		env := newTestEnvOn(t, kv, nil, CatalogOptions{})
		user, _ := env.signup(t, "ann@example.com")

		resp, err := env.sms.RequestNumber(t.Context(), user, NumberRequest{ServiceID: 1, CountryID: 1})
		require.NoError(t, err)
		assert.False(t, resp.Masked)
		assert.Empty(t, resp.SmsRequestID)
		assert.True(t, strings.HasPrefix(resp.Number, "+1"))
		assert.Equal(t, "6", user.Balance.String())

		code, err := env.sms.CheckCode(t.Context(), resp.RequestID)
		require.NoError(t, err)
		assert.False(t, code.Masked)
		assert.NotNil(t, code.SmsCode)
	})
}

func TestSmsService_CheckCode(t *testing.T) {
	t.Run("completes a stored request once", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		user, _ := env.signup(t, "ann@example.com")
		leased, err := env.sms.RequestNumber(t.Context(), user, NumberRequest{ServiceID: 1, CountryID: 1})
		require.NoError(t, err)

		first, err := env.sms.CheckCode(t.Context(), leased.SmsRequestID)
		require.NoError(t, err)
		require.NotNil(t, first.SmsCode)
		assert.Len(t, *first.SmsCode, 6)
		assert.Equal(t, "COMPLETED", first.Status)

		second, err := env.sms.CheckCode(t.Context(), leased.SmsRequestID)
		require.NoError(t, err)
		assert.Equal(t, *first.SmsCode, *second.SmsCode)

		record, err := redis.NewSmsRequestStore(env.kv).Get(t.Context(), leased.SmsRequestID)
		require.NoError(t, err)
		assert.Equal(t, models.SmsStatusCompleted, record.Status)
	})

	t.Run("pending before the code arrives", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		p := provider.NewMockProvider(1).WithSeed(3)
		env.sms.provider = p
		user, _ := env.signup(t, "ann@example.com")
		leased, err := env.sms.RequestNumber(t.Context(), user, NumberRequest{ServiceID: 1, CountryID: 1})
		require.NoError(t, err)

		pending, err := env.sms.CheckCode(t.Context(), leased.SmsRequestID)
		require.NoError(t, err)
		assert.Nil(t, pending.SmsCode)
		assert.Equal(t, "PENDING", pending.Status)

		done, err := env.sms.CheckCode(t.Context(), leased.SmsRequestID)
		require.NoError(t, err)
		assert.NotNil(t, done.SmsCode)
	})

	t.Run("raw provider ids go straight to the provider", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})

		resp, err := env.sms.CheckCode(t.Context(), "mock_123_abcdefg")
		require.NoError(t, err)
		require.NotNil(t, resp.SmsCode)
		assert.False(t, resp.Masked)
	})

	t.Run("errors", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})

		_, err := env.sms.CheckCode(t.Context(), "")
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = env.sms.CheckCode(t.Context(), "sms_unknown")
		assert.ErrorIs(t, err, ErrSmsRequestNotFound)

		env.sms.provider = failingProvider{err: errors.New("upstream down")}
		resp, err := env.sms.CheckCode(t.Context(), "remote-id")
		require.NoError(t, err)
		assert.True(t, resp.Masked)
		require.NotNil(t, resp.SmsCode)
		assert.Len(t, *resp.SmsCode, 6)
	})
}
