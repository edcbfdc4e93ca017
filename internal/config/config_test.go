package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDemoMode(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		redisURL string
		want     bool
	}{
		{name: "nothing configured", want: true},
		{name: "api key without redis", apiKey: "live", want: true},
		{name: "redis without api key", redisURL: "redis://localhost:6379", want: true},
		{name: "placeholder key", apiKey: "demo_key", redisURL: "redis://localhost:6379", want: true},
		{name: "fully configured", apiKey: "live", redisURL: "redis://localhost:6379", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				SMS:   SMSConfig{APIKey: tt.apiKey},
				Redis: RedisConfig{URL: tt.redisURL},
			}
			assert.Equal(t, tt.want, cfg.DemoMode())
		})
	}
}

func TestRelationalConfigured(t *testing.T) {
	cfg := &Config{Catalog: CatalogConfig{Backend: CatalogBackendPostgres}}
	assert.False(t, cfg.RelationalConfigured())

	cfg.Postgres.DSN = "postgres://localhost/storefront"
	assert.True(t, cfg.RelationalConfigured())

	cfg.Catalog.Backend = CatalogBackendScylla
	assert.False(t, cfg.RelationalConfigured())

	cfg.Scylla.Nodes = []string{"127.0.0.1"}
	assert.True(t, cfg.RelationalConfigured())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ,c")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_INT", "not-a-number")
	t.Setenv("TEST_DECIMAL", "0.75")

	assert.Equal(t, []string{"a", "b", "c"}, GetEnvList("TEST_LIST", nil))
	assert.Equal(t, 90*time.Second, GetEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, 7, GetEnvInt("TEST_INT", 7))
	assert.Equal(t, "0.75", GetEnvDecimal("TEST_DECIMAL", decimal.Zero).String())
	assert.Equal(t, "fallback", GetEnv("TEST_UNSET_VALUE", "fallback"))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_TTL", "")

	cfg := LoadConfig()

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.Equal(t, time.Hour, cfg.Catalog.CacheTTL)
	assert.Equal(t, "10", cfg.Auth.SignupBalance.String())
	assert.Equal(t, "0.5", cfg.SMS.DefaultPrice.String())
}

func TestNonPositiveWindowsFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "0s")
	t.Setenv("LOGIN_ATTEMPT_WINDOW", "-5m")

	cfg := LoadConfig()

	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, time.Minute, GetEnvPositiveDuration("TEST_UNSET_WINDOW", time.Minute))
}
