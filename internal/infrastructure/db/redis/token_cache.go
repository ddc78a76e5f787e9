package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache keeps a copy of each user's most recently issued token,
// expiring with the token itself. It is a convenience for downstream
// services; the durable jwt_token field on the user record and the
// signed token remain authoritative.
type TokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

// Store records the latest token for userID with the given TTL.
func (c *TokenCache) Store(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("cache token: %w", err)
	}
	return nil
}

// Invalidate drops the cached token for userID, if any.
func (c *TokenCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}
	return nil
}

func (c *TokenCache) key(userID string) string {
	return fmt.Sprintf("token:%s", userID)
}
