package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// AvailabilityCache keeps the available seat count of each showtime.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func (c *AvailabilityCache) GetAvailableCount(ctx context.Context, showtimeID uuid.UUID) (int, error) {
	val, err := c.client.Get(ctx, availableCountKey(showtimeID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get available count of %s: %w", showtimeID, err)
	}
	return val, nil
}

// SetAvailableCount overwrites the cached count. The ledger calls it after
// commit while still holding the showtime lock.
func (c *AvailabilityCache) SetAvailableCount(ctx context.Context, showtimeID uuid.UUID, count int) error {
	if err := c.client.Set(ctx, availableCountKey(showtimeID), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("set available count of %s: %w", showtimeID, err)
	}
	return nil
}

// FillAvailableCount stores count only when no value is cached, so a reader
// holding an older count never overwrites one written after a commit.
func (c *AvailabilityCache) FillAvailableCount(ctx context.Context, showtimeID uuid.UUID, count int) error {
	if err := c.client.SetNX(ctx, availableCountKey(showtimeID), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("fill available count of %s: %w", showtimeID, err)
	}
	return nil
}

func availableCountKey(showtimeID uuid.UUID) string {
	return fmt.Sprintf("seats:available:%s", showtimeID)
}
