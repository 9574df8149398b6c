package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CLIENT FOR CONVERSATION STATE

type Options struct {
	Addr     string
	Password string
	DB       int
}

// New creates a Redis client and waits until the server answers PING,
// retrying with exponential backoff.
func New(ctx context.Context, opts Options, logger *zap.Logger) (*redis.Client, error) {
	const operation = "redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     100, // Increase connection pool size
		MinIdleConns: 10,  // Keep minimum connections ready
	})

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = time.Minute
	retryPolicy.MaxInterval = 10 * time.Second

	logger.Info("Connecting to Redis...", zap.String("addr", opts.Addr))

	err := backoff.RetryNotify(
		func() error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("Redis connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	logger.Info("Successfully connected to Redis")
	return client, nil
}
