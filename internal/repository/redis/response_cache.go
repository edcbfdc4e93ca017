package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sms-storefront/internal/client"
	"sms-storefront/internal/util"
)

const responseCachePrefix = "cache:"

// ResponseCache stores JSON encoded API responses under cache:{key}.
type ResponseCache struct {
	client client.KVClient
}

func NewResponseCache(kv client.KVClient) *ResponseCache {
	return &ResponseCache{client: kv}
}

// Get decodes the cached value for key into dest. It reports false on a miss.
func (c *ResponseCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := c.client.Get(ctx, responseCachePrefix+key)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode cache %s: %w", key, err)
	}
	return true, nil
}

func (c *ResponseCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache %s: %w", key, err)
	}
	if err := c.client.Set(ctx, responseCachePrefix+key, string(raw), ttl); err != nil {
		return fmt.Errorf("failed to write cache %s: %w", key, err)
	}
	util.Debug("Response cached", util.String("key", key), util.Duration("ttl", ttl))
	return nil
}

func (c *ResponseCache) Invalidate(ctx context.Context, keys ...string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = responseCachePrefix + k
	}
	if err := c.client.Del(ctx, full...); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
