package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache caches the flight list and search results. Entries live under a
// version number that lookups return to the caller; writes go back under that same
// version, so a result computed before an Invalidate can never land under the new one.
// Stale entries are never read again and simply expire.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
	searchTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, searchTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL, searchTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL, searchTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL, searchTTL: searchTTL}
}

// GetFlights returns the cached list (nil on a miss) and the version it was looked up under.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, int64, error) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, err
	}

	var flights []domain.Flight
	ok, err := c.getJSON(ctx, flightsKey(version), &flights)
	if err != nil || !ok {
		return nil, version, err
	}
	return flights, version, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, version int64, flights []domain.Flight) error {
	return c.setJSON(ctx, flightsKey(version), flights, c.flightsTTL)
}

func (c *RedisCache) GetSearch(ctx context.Context, key string) (*domain.SearchResult, int64, error) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, err
	}

	var result domain.SearchResult
	ok, err := c.getJSON(ctx, searchKey(version, key), &result)
	if err != nil || !ok {
		return nil, version, err
	}
	return &result, version, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, version int64, key string, result *domain.SearchResult) error {
	return c.setJSON(ctx, searchKey(version, key), result, c.searchTTL)
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey()).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey(version int64) string {
	return fmt.Sprintf("cache:flights:v%d", version)
}

func versionKey() string {
	return "cache:version"
}

func searchKey(version int64, key string) string {
	return fmt.Sprintf("cache:search:v%d:%s", version, key)
}
