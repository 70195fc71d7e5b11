// Package cache provides the Redis connection used for caching upstream
// lookups. This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"fastfood_delivery_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis parses the configured URL and returns a connected client.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig != nil {
			clone := opt.TLSConfig.Clone()
			clone.InsecureSkipVerify = true
			opt.TLSConfig = clone
		} else {
			opt.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in via REDIS_TLS_INSECURE
		}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// PingAdapter exposes a redis client as a readiness check.
type PingAdapter struct {
	client *redis.Client
}

func NewPingAdapter(client *redis.Client) *PingAdapter {
	return &PingAdapter{client: client}
}

func (p *PingAdapter) Ping(ctx context.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Ping(ctx).Err()
}
