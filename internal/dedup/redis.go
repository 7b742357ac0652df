package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "jobscout:seen:"

// Redis is a seen cache shared across processes. Errors degrade to a cache
// miss: this is a fast path only, and the store catches what the cache
// misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis builds a cache over an existing client. Entries expire after
// ttl; zero means they never expire.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Seen(ctx context.Context, url string) bool {
	n, err := r.client.Exists(ctx, redisKeyPrefix+url).Result()
	if err != nil {
		r.logger.Warn("seen-cache lookup failed", "error", err)
		return false
	}
	return n > 0
}

func (r *Redis) Mark(ctx context.Context, url string) {
	if err := r.client.Set(ctx, redisKeyPrefix+url, 1, r.ttl).Err(); err != nil {
		r.logger.Warn("seen-cache mark failed", "error", err)
	}
}
