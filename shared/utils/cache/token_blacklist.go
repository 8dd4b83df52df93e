package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bcm-backend/shared/config"
)

// TokenBlacklist records revoked access tokens in redis until they would have expired.
// Permission decisions are never stored here.
type TokenBlacklist struct {
	client *redis.Client
}

// NewRedisClient builds a redis client from configuration and verifies the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewTokenBlacklist wraps an existing redis client.
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// AccessTokenKey generates the redis key for a revoked token id
func AccessTokenKey(tokenID string) string {
	return "blacklist:access_token:" + tokenID
}

// Revoke blacklists tokenID for ttl. Tokens that are already expired are ignored.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, AccessTokenKey(tokenID), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been blacklisted.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := b.client.Get(ctx, AccessTokenKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}

// Ping checks the redis connection.
func (b *TokenBlacklist) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
