package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/developerabhi04/order-service/pkg/metrics"
)

// Cache is the advisory key/value gateway. Implementations must never
// surface infrastructure failures to callers: a failed Get is a miss, a
// failed Set or Delete is logged and dropped.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	SetWithTTL(ctx context.Context, key, value string)
	Delete(ctx context.Context, keys ...string)
}

// opTimeout bounds each cache call independently of the request deadline,
// so a slow cache degrades reads to store fetches instead of stalling them.
const opTimeout = 2 * time.Second

type Redis struct {
	log *slog.Logger
	rdb *redis.Client
	ttl time.Duration
	met *metrics.CacheMetrics
}

func NewRedis(log *slog.Logger, rdb *redis.Client, ttl time.Duration, met *metrics.CacheMetrics) *Redis {
	return &Redis{log: log, rdb: rdb, ttl: ttl, met: met}
}

// Get returns the cached value and whether it was present. redis.Nil is a
// plain miss; any other failure is also reported as a miss but logged, to
// keep misses distinguishable from an unavailable cache in the logs.
func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		c.met.Miss()
		return "", false
	}
	if err != nil {
		c.met.Error()
		c.log.Warn("cache get failed, treating as miss", "key", key, "err", err)
		return "", false
	}
	c.met.Hit()
	return val, true
}

func (c *Redis) SetWithTTL(ctx context.Context, key, value string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "err", err)
	}
}

func (c *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache delete failed", "keys", keys, "err", err)
	}
}
