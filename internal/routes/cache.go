package routes

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes authoritative route lookups in Redis so repeat quotes
// between the same two locations skip the Directions call. A miss or a
// Redis outage is never an error, just a cold lookup.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(addr, password string, ttl time.Duration) *Cache {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{client: c, ttl: ttl}
}

func cacheKey(origin, destination string) string {
	return "route:" + strings.ToLower(strings.TrimSpace(origin)) + "->" + strings.ToLower(strings.TrimSpace(destination))
}

func (c *Cache) Get(ctx context.Context, origin, destination string) (Leg, bool) {
	raw, err := c.client.Get(ctx, cacheKey(origin, destination)).Result()
	if err != nil {
		return Leg{}, false
	}
	var leg Leg
	if err := json.Unmarshal([]byte(raw), &leg); err != nil {
		return Leg{}, false
	}
	return leg, true
}

func (c *Cache) Set(ctx context.Context, origin, destination string, leg Leg) {
	b, err := json.Marshal(leg)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(origin, destination), b, c.ttl).Err()
}
