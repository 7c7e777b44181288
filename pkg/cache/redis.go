// Package cache holds the Redis-backed helpers: the per-showtime distributed
// lock and the available-seat cache.
package cache

import (
	"context"
	"fmt"

	"movie-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis and verifies the connection with a PING.
func NewClient(ctx context.Context, config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", config.Addr, err)
	}
	return client, nil
}
