package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReceiptCache implements ports.ReceiptCache using Redis.
type ReceiptCache struct {
	client *goredis.Client
	prefix string
}

// NewReceiptCache creates a new Redis-backed receipt cache.
func NewReceiptCache(client *goredis.Client) *ReceiptCache {
	return &ReceiptCache{
		client: client,
		prefix: "receipt:",
	}
}

// Get retrieves a cached receipt by message hash.
// Returns nil, nil if the hash is not cached.
func (c *ReceiptCache) Get(ctx context.Context, hash string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+hash).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis receipt get: %w", err)
	}
	return val, nil
}

// Set caches a receipt with TTL. Receipts are immutable, so overwrites carry the same bytes.
func (c *ReceiptCache) Set(ctx context.Context, hash string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+hash, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis receipt set: %w", err)
	}
	return nil
}
