package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per upstream endpoint (e.g. "journeys", "locations").
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// DefaultConfig stays under the public db-rest allowance of 100 requests per minute.
func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 1.5,
		BurstSize:         5,
	}
}

func NewLimiter(config RateLimitConfig) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewLimiterWithDefaults() *Limiter {
	return NewLimiter(DefaultConfig())
}

func (l *Limiter) GetLimiter(endpoint string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[endpoint]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists = l.limiters[endpoint]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(l.defaults.RequestsPerSecond), l.defaults.BurstSize)
	l.limiters[endpoint] = limiter
	return limiter
}

func (l *Limiter) SetEndpointLimit(endpoint string, config RateLimitConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[endpoint] = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.BurstSize)
}

// Wait blocks until endpoint has a free token or ctx is done. A nil Limiter never blocks.
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	if l == nil {
		return nil
	}
	return l.GetLimiter(endpoint).Wait(ctx)
}
