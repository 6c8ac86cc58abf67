package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// hoursSource is the slice of Store the cache sits in front of.
type hoursSource interface {
	ListBusinessHours(ctx context.Context, tenantID uuid.UUID) (WeekSchedule, error)
}

// HoursCache is a read-through Redis cache for the weekly business-hours
// grid. Hours change rarely relative to slot-query volume, so a short TTL
// keeps the availability engine off the database on the hot path.
type HoursCache struct {
	redis  *redis.Client
	source hoursSource
	ttl    time.Duration
}

// NewHoursCache wraps the source store with a Redis cache.
func NewHoursCache(redisClient *redis.Client, source hoursSource, ttl time.Duration) *HoursCache {
	if redisClient == nil {
		panic("catalog: redis client required")
	}
	if source == nil {
		panic("catalog: hours source required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &HoursCache{redis: redisClient, source: source, ttl: ttl}
}

func (c *HoursCache) key(tenantID uuid.UUID) string {
	return fmt.Sprintf("scheduling:hours:%s", tenantID)
}

// ListBusinessHours returns the cached grid, falling back to the source
// and populating the cache on a miss. Redis failures other than a miss
// degrade to the source rather than erroring the slot query.
func (c *HoursCache) ListBusinessHours(ctx context.Context, tenantID uuid.UUID) (WeekSchedule, error) {
	data, err := c.redis.Get(ctx, c.key(tenantID)).Bytes()
	if err == nil {
		var week WeekSchedule
		if jsonErr := json.Unmarshal(data, &week); jsonErr == nil {
			return week, nil
		}
		// Corrupt entry: fall through and rewrite.
	} else if err != redis.Nil {
		week, srcErr := c.source.ListBusinessHours(ctx, tenantID)
		if srcErr != nil {
			return nil, srcErr
		}
		return week, nil
	}

	week, err := c.source.ListBusinessHours(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(week); err == nil {
		_ = c.redis.Set(ctx, c.key(tenantID), payload, c.ttl).Err()
	}
	return week, nil
}

// Invalidate drops the cached grid after an admin edit.
func (c *HoursCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if err := c.redis.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("catalog: invalidate hours cache: %w", err)
	}
	return nil
}
