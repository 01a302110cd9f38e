// Package revocation keeps the list of revoked access tokens in Redis.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:token:"

// package-level Redis client used for token revocation (optional)
var client *redis.Client

// SetClient configures the Redis client used for revocation checks.
// Safe to call with nil to disable revocation.
func SetClient(c *redis.Client) {
	client = c
}

// Enabled reports whether a Redis client is configured.
func Enabled() bool {
	return client != nil
}

// tokens are stored hashed
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Revoke marks token as revoked for ttl; a zero ttl keeps it forever.
// Without a Redis client this is a no-op.
func Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, key(token), "1", ttl).Err()
}

// IsRevoked reports whether token was revoked. Without a Redis client it
// returns (false, nil).
func IsRevoked(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}
	exists, err := client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
