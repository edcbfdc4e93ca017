package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/client"
	"sms-storefront/internal/config"
	"sms-storefront/internal/hashing"
	"sms-storefront/internal/models"
	"sms-storefront/internal/provider"
	"sms-storefront/internal/repository"
	"sms-storefront/internal/repository/redis"
)

type testEnv struct {
	kv       *client.EmbeddedRedis
	auth     *AuthService
	accounts *AccountService
	catalog  *CatalogService
	sms      *SmsService
	provider *provider.MockProvider
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SeedKey:          "seed-secret",
		MaxLoginAttempts: 3,
		LoginWindow:      time.Minute,
		SignupBalance:    decimal.NewFromInt(10),
	}
}

func newTestEnv(t *testing.T, repo repository.CatalogRepository, opts CatalogOptions) *testEnv {
	t.Helper()

	kv, err := client.NewEmbeddedRedis(0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	env := newTestEnvOn(t, kv, repo, opts)
	env.kv = kv
	return env
}

// newTestEnvOn builds the services over an arbitrary store, for tests that
// wrap the store to inject failures.
func newTestEnvOn(t *testing.T, kv client.KVClient, repo repository.CatalogRepository, opts CatalogOptions) *testEnv {
	t.Helper()

	users := redis.NewUserStore(kv)
	hasher := hashing.NewHasher(&config.HashingConfig{
		Argon2MemoryCost:  1024,
		Argon2TimeCost:    1,
		Argon2Parallelism: 1,
	})
	if opts.CacheTTL == 0 {
		opts.CacheTTL = time.Hour
	}

	env := &testEnv{provider: provider.NewMockProvider(0).WithSeed(7)}
	env.auth = NewAuthService(users, redis.NewSessionCache(kv, time.Hour), redis.NewRateLimitCache(kv), hasher, nil, testAuthConfig())
	env.accounts = NewAccountService(users, redis.NewTransactionStore(kv), nil)
	env.catalog = NewCatalogService(repo, redis.NewResponseCache(kv), nil, opts)
	env.sms = NewSmsService(env.provider, env.provider, redis.NewSmsRequestStore(kv), env.accounts, env.catalog, nil, decimal.RequireFromString("0.50"))
	return env
}

func (e *testEnv) signup(t *testing.T, email string) (*models.User, *models.Session) {
	t.Helper()
	user, session, err := e.auth.Signup(t.Context(), SignupRequest{Name: "Test User", Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return user, session
}
