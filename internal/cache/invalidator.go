package cache

import (
	"context"
	"fmt"
	"time"

	"gacha_backend/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Invalidator drops cached user projections after an economy operation
// commits. Invalidation is best-effort and happens outside the
// transactional boundary: a Redis failure never fails the operation.
type Invalidator struct {
	client *redis.Client
}

// New connects to Redis. With an empty addr, or if the ping fails, the
// client stays nil and every call becomes a no-op so the economy keeps
// working without the cache.
func New(addr, password string, db int) *Invalidator {
	inv := &Invalidator{}
	if addr == "" {
		return inv
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, cache invalidation disabled", "error", err)
		return inv
	}

	inv.client = client
	return inv
}

// InvalidateUsers removes the cached entries for the affected users.
func (i *Invalidator) InvalidateUsers(ctx context.Context, userIDs ...int64) {
	if i == nil || i.client == nil || len(userIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, fmt.Sprintf("user:%d", id))
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := i.client.Del(ctx, keys...).Err(); err != nil {
		logger.Debug("cache invalidation failed", "keys", keys, "error", err)
	}
}

// Client exposes the underlying connection for collaborators that share
// it (rate limiting middleware). Nil when Redis is not configured.
func (i *Invalidator) Client() *redis.Client {
	if i == nil {
		return nil
	}
	return i.client
}
