package location

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/shared/redis"
)

const cacheTTL = 5 * time.Minute

// Cache is a read-through cache for single locations. A nil Redis
// client disables it entirely; every method is safe to call either way,
// and cache failures never surface to callers.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewCache(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

func cacheKey(id uuid.UUID) string {
	return "location:" + id.String()
}

func (c *Cache) Get(ctx context.Context, id uuid.UUID) *Location {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == goredis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Warn("Location cache read failed", "component", "location_cache", "location_id", id, "error", err)
		return nil
	}

	var loc Location
	if err := json.Unmarshal(data, &loc); err != nil {
		c.logger.Warn("Location cache entry corrupt", "component", "location_cache", "location_id", id, "error", err)
		c.Invalidate(ctx, id)
		return nil
	}

	// The gravitational parameter never crosses the wire.
	if loc.Orbit != nil {
		loc.Orbit.GravParam = cosmos.G * (loc.Orbit.OrbitedMass + loc.Mass)
	}

	return &loc
}

func (c *Cache) Set(ctx context.Context, loc *Location) {
	if c == nil || c.client == nil || loc == nil {
		return
	}

	data, err := json.Marshal(loc)
	if err != nil {
		c.logger.Warn("Failed to encode location for cache", "component", "location_cache", "location_id", loc.ID, "error", err)
		return
	}

	if err := c.client.Set(ctx, cacheKey(loc.ID), data, cacheTTL).Err(); err != nil {
		c.logger.Warn("Location cache write failed", "component", "location_cache", "location_id", loc.ID, "error", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if c == nil || c.client == nil || len(ids) == 0 {
		return
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Location cache invalidation failed", "component", "location_cache", "count", len(keys), "error", err)
	}
}
