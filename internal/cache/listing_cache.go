package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListingCache holds serialized public-listing responses. Mutations bump a
// generation counter instead of scanning for keys, so invalidation is one
// INCR and stale entries just expire.
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListingCache(rdb *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{rdb: rdb, ttl: ttl}
}

const generationKey = "exchanges:listing:gen"

func (c *ListingCache) key(ctx context.Context, criteriaKey string) string {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if err != nil {
		gen = 0
	}
	return fmt.Sprintf("exchanges:listing:%d:%s", gen, criteriaKey)
}

func (c *ListingCache) Get(ctx context.Context, criteriaKey string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, c.key(ctx, criteriaKey)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *ListingCache) Set(ctx context.Context, criteriaKey string, data []byte) {
	c.rdb.Set(ctx, c.key(ctx, criteriaKey), data, c.ttl)
}

// Invalidate makes every cached listing stale.
func (c *ListingCache) Invalidate(ctx context.Context) {
	c.rdb.Incr(ctx, generationKey)
}
