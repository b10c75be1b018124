package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/valkey-io/valkey-go"

	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/redis"
)

const (
	ForEver = 0 * time.Second // ForEver It can be cached forever

	ProviderRedis  = "redis"  // ProviderRedis redis backed cache
	ProviderValKey = "valkey" // ProviderValKey valkey backed cache
	ProviderMemory = "memory" // ProviderMemory in process cache
)

// Cache interface propose an interface that any cache should adhere
type Cache interface {
	// Set sets a value in the caches accessible by the key. The ttl param is the maximum time to live in the cache
	// a ttl=0 means that the entry could be cached forever
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get searches for a non expired entry in the cache and decodes it into value, that must be a pointer.
	// You should only trust value if the returned boolean is true
	Get(ctx context.Context, key string, value any) bool
	// Exists tells whether a key exists in the cache with a valid ttl
	Exists(ctx context.Context, key string) bool
	// Delete removes an entry from the cache.
	Delete(ctx context.Context, key string) error
}

// Client is a cache together with the redis connection backing it, if any
type Client struct {
	Cache
	// Redis is set only for the redis provider so it can be shared with pubsub and health checks
	Redis *goredis.Client
}

// NewCacheClient creates a new cache client for provider
func NewCacheClient(ctx context.Context, provider, url string) (*Client, error) {
	switch provider {
	case ProviderRedis:
		rdb, err := redis.Open(ctx, url)
		if err != nil {
			log.Error(ctx, "cannot connect to redis", "err", err, "host", url)
			return nil, err
		}
		return &Client{Cache: NewRedisCache(rdb), Redis: rdb}, nil
	case ProviderValKey:
		client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{url}})
		if err != nil {
			log.Error(ctx, "cannot connect to valkey", "err", err, "host", url)
			return nil, err
		}
		return &Client{Cache: NewValKeyCache(client)}, nil
	case ProviderMemory, "":
		return &Client{Cache: NewMemoryCache()}, nil
	}
	return nil, fmt.Errorf("unknown cache provider %q", provider)
}
