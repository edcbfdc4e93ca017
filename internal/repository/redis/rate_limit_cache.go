package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sms-storefront/internal/client"
	"sms-storefront/internal/util"
)

const rateLimitPrefix = "rate_limit:"

// RateLimitCache counts attempts per key. Every attempt pushes the window
// expiry forward.
type RateLimitCache struct {
	client client.KVClient
}

func NewRateLimitCache(kv client.KVClient) *RateLimitCache {
	return &RateLimitCache{client: kv}
}

func (c *RateLimitCache) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	count, err := c.client.IncrWithExpire(ctx, rateLimitPrefix+key, window)
	if err != nil {
		util.Error("Failed to increment rate limit counter", util.String("key", key), util.ErrorField(err))
		return 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return int(count), nil
}

func (c *RateLimitCache) Count(ctx context.Context, key string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := c.client.Get(ctx, rateLimitPrefix+key)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get rate limit counter: %w", err)
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid counter format: %w", err)
	}
	return count, nil
}

func (c *RateLimitCache) Reset(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := c.client.Del(ctx, rateLimitPrefix+key); err != nil {
		return fmt.Errorf("failed to reset rate limit counter: %w", err)
	}
	return nil
}
