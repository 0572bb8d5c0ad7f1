package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is the shared-cache backend for deployments where several
// hosts run passes against the same upstream budget.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func metaKey(doi string) string {
	return fmt.Sprintf("journalclub:meta:%s", doi)
}

func (c *RedisCache) Get(ctx context.Context, doi string) (Meta, bool, error) {
	b, err := c.rdb.Get(ctx, metaKey(doi)).Bytes()
	if err == redis.Nil {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, err
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, false, err
	}
	return m, true, nil
}

func (c *RedisCache) Put(ctx context.Context, doi string, m Meta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, metaKey(doi), b, c.ttl).Err()
}
