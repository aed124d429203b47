package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/besserbahn/internal/aggregator"
	"github.com/dharmasatrya/besserbahn/internal/cache"
	"github.com/dharmasatrya/besserbahn/internal/config"
	"github.com/dharmasatrya/besserbahn/internal/metrics"
	"github.com/dharmasatrya/besserbahn/internal/providers"
	"github.com/dharmasatrya/besserbahn/internal/search"
	"github.com/dharmasatrya/besserbahn/internal/stations"
	"github.com/dharmasatrya/besserbahn/internal/timezone"
)

type app struct {
	service *search.Service
	cache   cache.Cache
}

// newApp wires the provider, aggregator and cache from cfg. Metrics are
// only registered for the long-running server.
func newApp(cfg config.Config, withMetrics bool) (*app, error) {
	if withMetrics {
		metrics.Init(nil)
	}

	db := providers.NewDBRest(providers.DBRestConfig{
		BaseURL:   cfg.ProviderBaseURL,
		UserAgent: cfg.UserAgent,
	})
	resolver := stations.NewResolver(db)

	agg := aggregator.NewAggregator(resolver, db, cfg.Aggregator(cfg.RateLimiter()))

	resultCache, err := newCache(cfg)
	if err != nil {
		return nil, err
	}

	location := timezone.GetLocationByName(cfg.Timezone)

	return &app{
		service: search.NewService(agg, resolver, resultCache, location),
		cache:   resultCache,
	}, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close cache")
	}
}

func newCache(cfg config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis %s:%s: %w", cfg.RedisHost, cfg.RedisPort, err)
		}
		log.Info().Str("host", cfg.RedisHost).Str("port", cfg.RedisPort).Dur("ttl", cfg.CacheTTL).Msg("Redis cache enabled")
		return redisCache, nil
	case config.CacheNone:
		log.Info().Msg("Cache disabled")
		return cache.NewNoOpCache(), nil
	default:
		log.Info().Dur("ttl", cfg.CacheTTL).Msg("In-memory cache enabled")
		return cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL), nil
	}
}
