package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "tripplanner:route:"

// RedisRouteCache stores computed routes as JSON with a TTL.
type RedisRouteCache struct {
	client *redis.Client
}

func NewRedisRouteCache(client *redis.Client) *RedisRouteCache {
	return &RedisRouteCache{client: client}
}

// Connect creates a go-redis client for addr and verifies it responds.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connect %q: %w", addr, err)
	}
	return client, nil
}

func (r *RedisRouteCache) Get(ctx context.Context, key string) (_ domain.RouteLeg, _ bool, err error) {
	defer obs.Time(ctx, "route.redis.Get")(&err)

	b, err := r.client.Get(ctx, routeKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RouteLeg{}, false, nil
	}
	if err != nil {
		return domain.RouteLeg{}, false, fmt.Errorf("get route cache: %w", err)
	}

	var leg domain.RouteLeg
	if err := json.Unmarshal(b, &leg); err != nil {
		return domain.RouteLeg{}, false, fmt.Errorf("get route cache: decode %q: %w", key, err)
	}
	return leg, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, key string, leg domain.RouteLeg, ttl time.Duration) error {
	b, err := json.Marshal(leg)
	if err != nil {
		return fmt.Errorf("put route cache: encode: %w", err)
	}
	if err := r.client.Set(ctx, routeKeyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("put route cache: %w", err)
	}
	return nil
}
