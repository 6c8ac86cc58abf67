// Package bootstrap builds the optional runtime collaborators main wires
// together: the Redis client and the business-hours source in front of it.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/naijabook/platform/internal/catalog"
	appconfig "github.com/naijabook/platform/internal/config"
	"github.com/naijabook/platform/pkg/logging"
)

// BuildRedisClient connects to Redis when an address is configured, or
// returns nil so callers fall back to database-only operation. With verify
// set, an unreachable server also yields nil rather than a client that fails
// on first use.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	client := redis.NewClient(redisOptions(cfg))
	if !verify {
		return client
	}

	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger == nil {
			logger = logging.Default()
		}
		logger.Warn("redis unreachable; running without the hours cache",
			"addr", cfg.RedisAddr,
			"error", err,
		)
		_ = client.Close()
		return nil
	}
	return client
}

func redisOptions(cfg *appconfig.Config) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// HoursSource lists a tenant's weekly business hours. Both the catalog store
// and its Redis cache satisfy it.
type HoursSource interface {
	ListBusinessHours(ctx context.Context, tenantID uuid.UUID) (catalog.WeekSchedule, error)
}

// BuildHoursSource fronts the catalog store with the Redis read-through cache
// when a client is available; without Redis the availability engine reads the
// database directly.
func BuildHoursSource(redisClient *redis.Client, store *catalog.Store, ttl time.Duration) HoursSource {
	if redisClient == nil {
		return store
	}
	return catalog.NewHoursCache(redisClient, store, ttl)
}
