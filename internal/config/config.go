package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dharmasatrya/besserbahn/internal/aggregator"
	"github.com/dharmasatrya/besserbahn/internal/cache"
	"github.com/dharmasatrya/besserbahn/internal/providers"
	"github.com/dharmasatrya/besserbahn/internal/ratelimit"
	"github.com/dharmasatrya/besserbahn/internal/splitpoint"
	"github.com/dharmasatrya/besserbahn/internal/timezone"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"

	fileEnv = "BESSERBAHN_CONFIG"
)

type Config struct {
	Port            string `yaml:"port"`
	ProviderBaseURL string `yaml:"provider_base_url"`
	UserAgent       string `yaml:"user_agent"`
	Timezone        string `yaml:"timezone"`

	CacheBackend  string        `yaml:"cache_backend"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	RedisHost     string        `yaml:"redis_host"`
	RedisPort     string        `yaml:"redis_port"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`

	Search     SearchConfig                         `yaml:"search"`
	RateLimits map[string]ratelimit.RateLimitConfig `yaml:"rate_limits"`
}

type SearchConfig struct {
	Timeout          time.Duration   `yaml:"timeout"`
	CallTimeout      time.Duration   `yaml:"call_timeout"`
	MaxRetries       int             `yaml:"max_retries"`
	RetryDelays      []time.Duration `yaml:"retry_delays"`
	MaxConcurrency   int             `yaml:"max_concurrency"`
	Hubs             []string        `yaml:"hubs"`
	FallbackHubCount int             `yaml:"fallback_hub_count"`
	DynamicBuffer    time.Duration   `yaml:"dynamic_buffer"`
	HubBuffer        time.Duration   `yaml:"hub_buffer"`
	MinDwell         time.Duration   `yaml:"min_dwell"`
	MaxSplitPoints   int             `yaml:"max_split_points"`
}

func Default() Config {
	agg := aggregator.DefaultConfig()
	return Config{
		Port:            "3000",
		ProviderBaseURL: providers.DefaultDBRestURL,
		UserAgent:       providers.DefaultUserAgent,
		Timezone:        timezone.DefaultZone,
		CacheBackend:    CacheMemory,
		CacheTTL:        cache.DefaultTTL,
		RedisHost:       "localhost",
		RedisPort:       "6379",
		Search: SearchConfig{
			Timeout:          agg.SearchTimeout,
			CallTimeout:      agg.CallTimeout,
			MaxRetries:       agg.MaxRetries,
			RetryDelays:      agg.RetryDelays,
			MaxConcurrency:   agg.MaxConcurrency,
			Hubs:             agg.Hubs,
			FallbackHubCount: agg.FallbackHubCount,
			DynamicBuffer:    agg.DynamicBuffer,
			HubBuffer:        agg.HubBuffer,
			MinDwell:         agg.SplitPoints.MinDwell,
			MaxSplitPoints:   agg.SplitPoints.MaxPoints,
		},
		RateLimits: map[string]ratelimit.RateLimitConfig{},
	}
}

// Load starts from Default, applies the YAML file named by BESSERBAHN_CONFIG
// if set, then applies environment overrides. A .env file in the working
// directory is read into the environment first.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(fileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.ProviderBaseURL = getEnv("DB_REST_URL", c.ProviderBaseURL)
	c.UserAgent = getEnv("BESSERBAHN_USER_AGENT", c.UserAgent)
	c.Timezone = getEnv("BESSERBAHN_TIMEZONE", c.Timezone)

	c.CacheBackend = getEnv("CACHE_BACKEND", c.CacheBackend)
	if !getEnvBool("CACHE_ENABLED", true) {
		c.CacheBackend = CacheNone
	}
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnv("REDIS_PORT", c.RedisPort)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)

	c.Search.Timeout = getEnvDuration("SEARCH_TIMEOUT", c.Search.Timeout)
	c.Search.CallTimeout = getEnvDuration("CALL_TIMEOUT", c.Search.CallTimeout)
	c.Search.MaxRetries = getEnvInt("MAX_RETRIES", c.Search.MaxRetries)
	c.Search.MaxConcurrency = getEnvInt("MAX_CONCURRENCY", c.Search.MaxConcurrency)
	c.Search.FallbackHubCount = getEnvInt("FALLBACK_HUB_COUNT", c.Search.FallbackHubCount)
	c.Search.DynamicBuffer = getEnvDuration("SPLIT_BUFFER", c.Search.DynamicBuffer)
	c.Search.HubBuffer = getEnvDuration("HUB_BUFFER", c.Search.HubBuffer)
	c.Search.MinDwell = getEnvDuration("MIN_DWELL", c.Search.MinDwell)
	c.Search.MaxSplitPoints = getEnvInt("MAX_SPLIT_POINTS", c.Search.MaxSplitPoints)
	if hubs := os.Getenv("HUBS"); hubs != "" {
		c.Search.Hubs = splitList(hubs)
	}
}

func (c Config) Validate() error {
	switch c.CacheBackend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.Search.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.Search.MaxConcurrency)
	}
	if c.Search.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.Search.MaxRetries)
	}
	return nil
}

// Aggregator converts the search section into the route aggregator's config.
func (c Config) Aggregator(limiter *ratelimit.Limiter) aggregator.Config {
	agg := aggregator.DefaultConfig()
	agg.SearchTimeout = c.Search.Timeout
	agg.CallTimeout = c.Search.CallTimeout
	agg.MaxRetries = c.Search.MaxRetries
	agg.RetryDelays = c.Search.RetryDelays
	agg.RateLimiter = limiter
	agg.MaxConcurrency = c.Search.MaxConcurrency
	agg.Hubs = c.Search.Hubs
	agg.FallbackHubCount = c.Search.FallbackHubCount
	agg.DynamicBuffer = c.Search.DynamicBuffer
	agg.HubBuffer = c.Search.HubBuffer
	agg.SplitPoints = splitpoint.Options{
		MaxPoints: c.Search.MaxSplitPoints,
		MinDwell:  c.Search.MinDwell,
	}
	return agg
}

func (c Config) RateLimiter() *ratelimit.Limiter {
	limiter := ratelimit.NewLimiterWithDefaults()
	for endpoint, limit := range c.RateLimits {
		limiter.SetEndpointLimit(endpoint, limit)
	}
	return limiter
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
