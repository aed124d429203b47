package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocachestore "github.com/eko/gocache/store/go_cache/v4"
	redisstore "github.com/eko/gocache/store/redis/v4"
	gocacheclient "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

const DefaultTTL = 5 * time.Minute

type Cache interface {
	Get(ctx context.Context, query models.SearchQuery) (*models.CacheEntry, bool)
	// Set stores payload and returns the entry as it was stored.
	Set(ctx context.Context, query models.SearchQuery, payload []models.RouteOption) (*models.CacheEntry, error)
	Close() error
}

// StoreCache keeps serialized entries in a gocache store. Entries are
// written once and decoded into a fresh slice on every read, so callers
// can never mutate what is stored.
type StoreCache struct {
	cache  *gocache.Cache[string]
	ttl    time.Duration
	now    func() time.Time
	closer func() error
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      DefaultTTL,
	}
}

func NewRedisCache(cfg RedisConfig) (*StoreCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	s := redisstore.NewRedis(client, store.WithExpiration(ttlOrDefault(cfg.TTL)))
	return newStoreCache(s, cfg.TTL, client.Close), nil
}

// NewMemoryCache keeps entries in process memory; expired entries are swept
// every cleanupInterval.
func NewMemoryCache(ttl, cleanupInterval time.Duration) *StoreCache {
	client := gocacheclient.New(ttlOrDefault(ttl), cleanupInterval)
	s := gocachestore.NewGoCache(client, store.WithExpiration(ttlOrDefault(ttl)))
	return newStoreCache(s, ttl, func() error {
		client.Flush()
		return nil
	})
}

func newStoreCache(s store.StoreInterface, ttl time.Duration, closer func() error) *StoreCache {
	return &StoreCache{
		cache:  gocache.New[string](s),
		ttl:    ttlOrDefault(ttl),
		now:    time.Now,
		closer: closer,
	}
}

func (c *StoreCache) Get(ctx context.Context, query models.SearchQuery) (*models.CacheEntry, bool) {
	data, err := c.cache.Get(ctx, generateKey(query))
	if err != nil || data == "" {
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable cache entry")
		return nil, false
	}

	// The store expires entries itself; this guards against clock skew
	// between the store and this process.
	if entry.Key != query || entry.Expired(c.now()) {
		return nil, false
	}

	return &entry, true
}

func (c *StoreCache) Set(ctx context.Context, query models.SearchQuery, payload []models.RouteOption) (*models.CacheEntry, error) {
	entry := newEntry(query, payload, c.now(), c.ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, generateKey(query), string(data), store.WithExpiration(c.ttl)); err != nil {
		return nil, err
	}
	return entry, nil
}

func (c *StoreCache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, query models.SearchQuery) (*models.CacheEntry, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, query models.SearchQuery, payload []models.RouteOption) (*models.CacheEntry, error) {
	return newEntry(query, payload, time.Now(), 0), nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// newEntry stamps ComputedAt in UTC so a stored entry encodes the same way
// before and after a round trip through the store.
func newEntry(query models.SearchQuery, payload []models.RouteOption, now time.Time, ttl time.Duration) *models.CacheEntry {
	if payload == nil {
		payload = []models.RouteOption{}
	}
	return &models.CacheEntry{
		Key:        query,
		Payload:    payload,
		ComputedAt: now.UTC(),
		TTL:        ttl,
	}
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

func generateKey(query models.SearchQuery) string {
	data, _ := json.Marshal(query)
	hash := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(hash[:])
}
