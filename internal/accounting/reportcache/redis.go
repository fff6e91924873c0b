package reportcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared across API processes. Cache failures degrade to
// recomputation: a Redis error is logged and treated as a miss, never
// surfaced to the report caller.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("report cache get failed", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("report cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (r *Redis) InvalidateClient(ctx context.Context, clientID string) int {
	pattern := clientPattern(clientID) + "*"
	var removed int
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn("report cache del failed", slog.String("key", iter.Val()), slog.Any("error", err))
			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("report cache scan failed", slog.String("pattern", pattern), slog.Any("error", err))
	}
	return removed
}
