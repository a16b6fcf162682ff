package geo

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"rastreioBack/internal/tracking/cities"
)

// Logger defines minimal logging interface required by the cache.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// CityCache stores resolved destination coordinates in a Redis GEO set so
// synthetic locations survive restarts and stay consistent across instances.
type CityCache struct {
	rdb *redis.Client
	key string
}

// NewCityCache constructs a cache over the given Redis client.
func NewCityCache(rdb *redis.Client, key string) *CityCache {
	if key == "" {
		key = "tracking:cities"
	}
	return &CityCache{rdb: rdb, key: key}
}

func member(city, state string) string {
	return fmt.Sprintf("%s|%s", strings.ToLower(strings.TrimSpace(city)), strings.ToUpper(strings.TrimSpace(state)))
}

// Lookup returns cached coordinates for a city, if present.
func (c *CityCache) Lookup(ctx context.Context, city, state string) (lat, lng float64, ok bool, err error) {
	pos, err := c.rdb.GeoPos(ctx, c.key, member(city, state)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	if len(pos) == 0 || pos[0] == nil {
		return 0, 0, false, nil
	}
	return pos[0].Latitude, pos[0].Longitude, true, nil
}

// Store caches coordinates for a city.
func (c *CityCache) Store(ctx context.Context, city, state string, lat, lng float64) error {
	return c.rdb.GeoAdd(ctx, c.key, &redis.GeoLocation{
		Name:      member(city, state),
		Latitude:  lat,
		Longitude: lng,
	}).Err()
}

// CachedResolver resolves locations through the fixed hub table first and a
// Redis-backed coordinate cache second. Cache failures degrade to the plain
// table resolution, never to an error: some coordinate is always produced.
type CachedResolver struct {
	cache  *CityCache
	logger Logger
}

// NewCachedResolver constructs a resolver over the cache.
func NewCachedResolver(cache *CityCache, logger Logger) *CachedResolver {
	return &CachedResolver{cache: cache, logger: logger}
}

// Resolve implements the simulate.Resolver contract.
func (r *CachedResolver) Resolve(ctx context.Context, city, state string, lat, lng *float64) cities.Location {
	if loc, ok := cities.Lookup(city, state); ok {
		return loc
	}
	if lat != nil && lng != nil {
		loc := cities.Resolve(city, state, lat, lng)
		r.store(ctx, loc)
		return loc
	}

	if cachedLat, cachedLng, ok, err := r.cache.Lookup(ctx, city, state); err != nil {
		r.logger.Errorf("city cache lookup %s/%s failed: %v", city, state, err)
	} else if ok {
		return cities.Location{
			City:  strings.TrimSpace(city),
			State: strings.ToUpper(strings.TrimSpace(state)),
			Lat:   cachedLat,
			Lng:   cachedLng,
		}
	}

	loc := cities.Fallback(city, state)
	r.logger.Infof("city %s/%s not known, using fallback coordinates for %s, %s", city, state, loc.City, loc.State)
	r.store(ctx, loc)
	return loc
}

func (r *CachedResolver) store(ctx context.Context, loc cities.Location) {
	if err := r.cache.Store(ctx, loc.City, loc.State, loc.Lat, loc.Lng); err != nil {
		r.logger.Errorf("city cache store %s/%s failed: %v", loc.City, loc.State, err)
	}
}
