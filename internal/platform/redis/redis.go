package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"raffle-tool-backend/internal/common/config"
)

// Client wraps go-redis to allow future extensions.
type Client struct {
	*redis.Client
}

// Open creates a Redis client and pings it to validate the connection.
func Open(ctx context.Context, cfg *config.Config) (*Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Client{Client: c}, nil
}
