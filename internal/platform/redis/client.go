// Package redis dials the Redis instance backing the session and lockout
// stores.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"easyplit/internal/platform/config"
)

// Client wraps go-redis with the health probe /healthz consults.
type Client struct {
	*redis.Client
}

// New connects using the configured URL. A blank URL returns a nil client
// and the caller falls back to in-memory stores.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	// Sessions are load-bearing; refuse to start over a dead Redis rather
	// than fail on the first login.
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
