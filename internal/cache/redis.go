// Package cache opens the redis connection shared by the state driver, the task
// publisher and the worker.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"unsritalk/internal/config"
)

const (
	pingAttempts = 3
	pingTimeout  = 2 * time.Second
)

// Connect returns a client that answered PING. It retries a few times so the portal can
// start alongside a redis container that is still booting.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = ping(ctx, client); err == nil {
			return client, nil
		}
		if attempt == pingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
		}
	}

	client.Close()
	return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
}

// Optional connects when an address is configured and returns nil otherwise, or when
// redis cannot be reached. Callers fall back to running without background tasks.
func Optional(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client, err := Connect(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, background tasks disabled")
		return nil
	}
	return client
}

func ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
