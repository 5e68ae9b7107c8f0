package infrastructure

import (
	"context"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/redis/go-redis/v9"
)

type (
	// KeydbClient wraps the Redis/KeyDB connection used for the last-fix cache.
	KeydbClient struct {
		client *redis.Client
		logger Logger
	}
)

func NewKeydbClient(cfg config.CacheConfig, logger Logger) *KeydbClient {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	})

	return &KeydbClient{
		client: client,
		logger: logger,
	}
}

func (c *KeydbClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *KeydbClient) Client() *redis.Client {
	return c.client
}

func (c *KeydbClient) Close() error {
	return c.client.Close()
}
