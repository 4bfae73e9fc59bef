package redis

import (
	"context"
	"errors"
	"time"

	"persona-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// TokenCache remembers resolved tokens in Redis in front of another resolver.
// Only successful resolutions are cached, so revoked tokens stay valid for at
// most ttl.
type TokenCache struct {
	client *redis.Client
	next   app.TokenResolver
	ttl    time.Duration
}

func NewTokenCache(client *redis.Client, next app.TokenResolver, ttl time.Duration) *TokenCache {
	return &TokenCache{client: client, next: next, ttl: ttl}
}

func (c *TokenCache) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := c.client.Get(ctx, c.key(token)).Result()
	if err == nil && userID != "" {
		return userID, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		// cache unavailable; resolve directly
		return c.next.Resolve(ctx, token)
	}

	userID, err = c.next.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	// best-effort marker
	_ = c.client.Set(ctx, c.key(token), userID, c.ttl).Err()
	return userID, nil
}

// Forget drops a cached token after it was revoked in the backing store.
func (c *TokenCache) Forget(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.key(token)).Err()
}

func (c *TokenCache) key(token string) string {
	return "quiz:token:" + token
}
