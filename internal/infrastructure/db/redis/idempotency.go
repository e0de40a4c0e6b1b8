package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = time.Hour

// IdempotencyGuard provides replay detection for price submissions backed by
// Redis. Key format: price_submit:<idempotency_key>
type IdempotencyGuard struct {
	client *redis.Client
}

// NewIdempotencyGuard creates an IdempotencyGuard wrapping the given client.
func NewIdempotencyGuard(client *redis.Client) *IdempotencyGuard {
	return &IdempotencyGuard{client: client}
}

// IsDuplicate reports whether a submission with this key was already applied.
func (g *IdempotencyGuard) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency check: %w", err)
	}
	return n > 0, nil
}

// Mark records that a submission with this key has been applied. The key
// expires after idempotencyTTL; the prices collection keeps the durable copy.
func (g *IdempotencyGuard) Mark(ctx context.Context, key string) error {
	return g.client.Set(ctx, g.key(key), "1", idempotencyTTL).Err()
}

func (g *IdempotencyGuard) key(key string) string {
	return "price_submit:" + key
}
