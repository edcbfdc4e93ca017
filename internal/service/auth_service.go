package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sms-storefront/internal/config"
	"sms-storefront/internal/events"
	"sms-storefront/internal/hashing"
	"sms-storefront/internal/metrics"
	"sms-storefront/internal/models"
	"sms-storefront/internal/repository/redis"
	"sms-storefront/internal/util"
)

const loginRateLimitPrefix = "login:"

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService owns account creation, credentials and sessions. The session
// store is authoritative: every call that takes a session id re-validates it.
type AuthService struct {
	users    *redis.UserStore
	sessions *redis.SessionCache
	limits   *redis.RateLimitCache
	hasher   *hashing.Hasher
	events   events.Publisher
	cfg      config.AuthConfig
	now      func() time.Time
}

func NewAuthService(
	users *redis.UserStore,
	sessions *redis.SessionCache,
	limits *redis.RateLimitCache,
	hasher *hashing.Hasher,
	publisher events.Publisher,
	cfg config.AuthConfig,
) *AuthService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		limits:   limits,
		hasher:   hasher,
		events:   publisher,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

// Signup creates the user with the configured starting balance and opens a
// session for it.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.User, *models.Session, error) {
	name := util.SanitizeInput(req.Name)
	if name == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, nil, invalid("Name, email, and password are required")
	}
	email, ok := util.NormalizeEmail(req.Email)
	if !ok {
		return nil, nil, invalid("Invalid email address")
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Balance:      s.cfg.SignupBalance,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, redis.ErrEmailTaken) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	util.Info("User signed up", util.String("user_id", user.ID))
	s.events.Publish(ctx, models.EventUserSignedUp, user.ID, nil)
	return user, session, nil
}

// Login verifies credentials. Failed attempts per email are counted and
// rejected once the configured maximum is reached inside the window.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, *models.Session, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, nil, invalid("Email and password are required")
	}
	email, ok := util.NormalizeEmail(req.Email)
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}
	limitKey := loginRateLimitPrefix + email

	attempts, err := s.limits.Count(ctx, limitKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if s.cfg.MaxLoginAttempts > 0 && attempts >= s.cfg.MaxLoginAttempts {
		metrics.RecordLoginThrottled()
		util.Warn("Login throttled", util.String("email", email), util.Int("attempts", attempts))
		return nil, nil, ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, redis.ErrUserNotFound) {
			s.recordFailure(ctx, limitKey)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	match, err := s.hasher.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		util.Error("Stored password hash unreadable", util.String("user_id", user.ID), util.ErrorField(err))
	}
	if !match {
		s.recordFailure(ctx, limitKey)
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.limits.Reset(ctx, limitKey); err != nil {
		util.Warn("Failed to reset login counter", util.ErrorField(err))
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	util.Info("User logged in", util.String("user_id", user.ID))
	s.events.Publish(ctx, models.EventUserLoggedIn, user.ID, nil)
	return user, session, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if _, err := s.limits.Increment(ctx, key, s.cfg.LoginWindow); err != nil {
		util.Warn("Failed to record login failure", util.ErrorField(err))
	}
}

// Logout revokes the session. An empty id is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	userID, err := s.sessions.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, redis.ErrSessionNotFound) {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if userID != "" {
		s.events.Publish(ctx, models.EventUserLoggedOut, userID, nil)
	}
	return nil
}

// ResolveSession maps a session id to its user and slides the session
// expiry forward.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}

	userID, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, redis.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.sessions.Touch(ctx, sessionID); err != nil {
		util.Warn("Failed to extend session", util.String("user_id", userID), util.ErrorField(err))
	}
	return user, nil
}

// Refresh validates the session and returns it with its new expiry.
func (s *AuthService) Refresh(ctx context.Context, sessionID string) (*models.Session, error) {
	user, err := s.ResolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessions.TTL()),
	}, nil
}
