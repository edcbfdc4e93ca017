package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/repository/redis"
)

func TestAuthService_Signup(t *testing.T) {
	t.Run("creates user with starting balance and session", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})

		user, session := env.signup(t, "Ann@Example.com")

		assert.Equal(t, "ann@example.com", user.Email)
		assert.True(t, decimal.NewFromInt(10).Equal(user.Balance))
		assert.NotEqual(t, "password123", user.PasswordHash)

		resolved, err := env.auth.ResolveSession(t.Context(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
	})

	t.Run("duplicate email is rejected without a session", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		first, _ := env.signup(t, "ann@example.com")

		user, session, err := env.auth.Signup(t.Context(), SignupRequest{Name: "Other", Email: "ANN@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrEmailExists)
		assert.Nil(t, user)
		assert.Nil(t, session)

		found, err := redis.NewUserStore(env.kv).FindByEmail(t.Context(), "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		assert.Equal(t, "Test User", found.Name)
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})

		tests := []SignupRequest{
			{Email: "a@b.co", Password: "x"},
			{Name: "A", Password: "x"},
			{Name: "A", Email: "a@b.co"},
			{Name: "A", Email: "not-an-email", Password: "x"},
		}
		for _, req := range tests {
			_, _, err := env.auth.Signup(t.Context(), req)
			assert.ErrorIs(t, err, ErrInvalidInput, "%+v", req)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("correct credentials open a new session", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		user, first := env.signup(t, "ann@example.com")

		loggedIn, session, err := env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.NotEqual(t, first.ID, session.ID)
	})

	t.Run("wrong password and unknown email", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		env.signup(t, "ann@example.com")

		_, _, err := env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = env.auth.Login(t.Context(), LoginRequest{Email: "bob@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("throttles after repeated failures", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		env.signup(t, "ann@example.com")

		for i := 0; i < testAuthConfig().MaxLoginAttempts; i++ {
			_, _, err := env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com", Password: "nope"})
			require.ErrorIs(t, err, ErrInvalidCredentials)
		}

		_, _, err := env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("success resets the failure counter", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		env.signup(t, "ann@example.com")

		for i := 0; i < testAuthConfig().MaxLoginAttempts-1; i++ {
			_, _, _ = env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com", Password: "nope"})
		}
		_, _, err := env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com", Password: "password123"})
		require.NoError(t, err)

		_, _, err = env.auth.Login(t.Context(), LoginRequest{Email: "ann@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Sessions(t *testing.T) {
	t.Run("logout revokes before expiry", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		_, session := env.signup(t, "ann@example.com")

		require.NoError(t, env.auth.Logout(t.Context(), session.ID))

		_, err := env.auth.ResolveSession(t.Context(), session.ID)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.NoError(t, env.auth.Logout(t.Context(), ""))
	})

	t.Run("missing cookie and unknown session", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})

		_, err := env.auth.ResolveSession(t.Context(), "")
		assert.ErrorIs(t, err, ErrNotAuthenticated)

		_, err = env.auth.ResolveSession(t.Context(), "does-not-exist")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("session for a deleted user", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		session, err := redis.NewSessionCache(env.kv, time.Hour).Create(t.Context(), "ghost")
		require.NoError(t, err)

		_, err = env.auth.ResolveSession(t.Context(), session.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("refresh extends expiry", func(t *testing.T) {
		env := newTestEnv(t, nil, CatalogOptions{})
		user, session := env.signup(t, "ann@example.com")

		refreshed, err := env.auth.Refresh(t.Context(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, refreshed.ID)
		assert.Equal(t, user.ID, refreshed.UserID)
		assert.False(t, refreshed.ExpiresAt.Before(session.ExpiresAt))

		ttl, err := env.kv.TTL(t.Context(), "session:"+session.ID)
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})
}
