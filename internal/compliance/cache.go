package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisclient "meridian/internal/platform/redis"
	id "meridian/pkg/domain"
)

// Cache is a read-through cache over the map store. A miss or a cache fault
// falls back to the store; cached entries may be stale for at most the TTL
// window and are never authoritative past expiry.
type Cache interface {
	Get(ctx context.Context, jurisdiction id.Jurisdiction) (*ComplianceMap, bool)
	Set(ctx context.Context, m *ComplianceMap)
	Invalidate(ctx context.Context, jurisdiction id.Jurisdiction)
}

const cacheKeyPrefix = "compliance:map:"

// RedisCache caches compliance maps as JSON values with a bounded TTL.
type RedisCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewRedisCache(client *redisclient.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, jurisdiction id.Jurisdiction) (*ComplianceMap, bool) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+jurisdiction.String()).Bytes()
	if errors.Is(err, goredis.Nil) || err != nil {
		return nil, false
	}
	var m ComplianceMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

func (c *RedisCache) Set(ctx context.Context, m *ComplianceMap) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKeyPrefix+m.Jurisdiction.String(), raw, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, jurisdiction id.Jurisdiction) {
	c.client.Del(ctx, cacheKeyPrefix+jurisdiction.String())
}

// NoopCache disables caching; every lookup hits the store.
type NoopCache struct{}

func (NoopCache) Get(context.Context, id.Jurisdiction) (*ComplianceMap, bool) { return nil, false }

func (NoopCache) Set(context.Context, *ComplianceMap) {}

func (NoopCache) Invalidate(context.Context, id.Jurisdiction) {}
