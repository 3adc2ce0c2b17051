package checkout

import (
	"context" // Context for Redis operations
	"time"    // Guard TTL

	"github.com/redis/go-redis/v9" // Redis client
)

// Guard rejects overlapping confirms for the same customer and service. It is
// the server-side form of disabling the confirm control while a request is in
// flight; it is not an idempotency key and none is sent upstream.
type Guard interface {
	Acquire(ctx context.Context, customerID, serviceID string) (bool, error)
	Release(ctx context.Context, customerID, serviceID string)
}

// RedisGuard implements Guard with a short-lived SETNX key.
type RedisGuard struct {
	rdb *redis.Client // Redis client
	ttl time.Duration // Safety TTL in case Release never runs
}

// NewRedisGuard creates a guard with the given TTL.
func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second // Safety default
	}
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func guardKey(customerID, serviceID string) string {
	return "checkout:inflight:" + customerID + ":" + serviceID
}

// Acquire takes the in-flight slot; false means another confirm holds it.
func (g *RedisGuard) Acquire(ctx context.Context, customerID, serviceID string) (bool, error) {
	return g.rdb.SetNX(ctx, guardKey(customerID, serviceID), 1, g.ttl).Result()
}

// Release frees the slot once the confirm completes.
func (g *RedisGuard) Release(ctx context.Context, customerID, serviceID string) {
	_ = g.rdb.Del(ctx, guardKey(customerID, serviceID)).Err()
}
