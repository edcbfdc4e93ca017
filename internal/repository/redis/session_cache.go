package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sms-storefront/internal/client"
	"sms-storefront/internal/models"
	"sms-storefront/internal/util"
)

const sessionPrefix = "session:"

// SessionCache maps opaque session tokens to user ids. The store's own key
// expiry is the only expiry clock.
type SessionCache struct {
	client client.KVClient
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionCache(kv client.KVClient, ttl time.Duration) *SessionCache {
	return &SessionCache{client: kv, ttl: ttl, now: time.Now}
}

func (c *SessionCache) TTL() time.Duration {
	return c.ttl
}

func (c *SessionCache) Create(ctx context.Context, userID string) (*models.Session, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: c.now().Add(c.ttl),
	}
	if err := c.client.Set(ctx, sessionPrefix+session.ID, userID, c.ttl); err != nil {
		util.Error("Failed to create session", util.String("user_id", userID), util.ErrorField(err))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	util.Debug("Session created", util.String("user_id", userID), util.Duration("ttl", c.ttl))
	return session, nil
}

// Get returns the user id bound to sessionID.
func (c *SessionCache) Get(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionNotFound
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	userID, err := c.client.Get(ctx, sessionPrefix+sessionID)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return userID, nil
}

// Touch slides the expiry of an existing session forward by the full TTL.
func (c *SessionCache) Touch(ctx context.Context, sessionID string) (time.Time, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := c.client.Expire(ctx, sessionPrefix+sessionID, c.ttl); err != nil {
		return time.Time{}, fmt.Errorf("failed to refresh session: %w", err)
	}
	return c.now().Add(c.ttl), nil
}

func (c *SessionCache) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := c.client.Del(ctx, sessionPrefix+sessionID); err != nil {
		util.Error("Failed to delete session", util.ErrorField(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
