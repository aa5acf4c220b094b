package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultScanBatchSize = 100
	defaultReportTTL     = 5 * time.Minute
	defaultKeyPrefix     = "salesdash:report:"
	generationKey        = "generation"
)

// ReportCache stores JSON-encoded report payloads by key
type ReportCache interface {
	// Get decodes the cached value for key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key with the cache's TTL
	Set(ctx context.Context, key string, value any) error
	// Generation returns a counter that InvalidateAll increments. Callers
	// put it into their keys so a value computed before an invalidation is
	// never read after it.
	Generation(ctx context.Context) (uint64, error)
	// InvalidateAll removes every cached report
	InvalidateAll(ctx context.Context) error
}

// RedisReportCache implements ReportCache using Redis
type RedisReportCache struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
	ttl        time.Duration
	logger     *zap.Logger
}

// ReportCacheOption configures a report cache
type ReportCacheOption func(*reportCacheOptions)

type reportCacheOptions struct {
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// WithTTL sets how long cached reports live
func WithTTL(ttl time.Duration) ReportCacheOption {
	return func(o *reportCacheOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the namespace prepended to every key
func WithKeyPrefix(prefix string) ReportCacheOption {
	return func(o *reportCacheOptions) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) ReportCacheOption {
	return func(o *reportCacheOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []ReportCacheOption) reportCacheOptions {
	o := reportCacheOptions{
		prefix: defaultKeyPrefix,
		ttl:    defaultReportTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRedisReportCache connects to Redis and returns a cache owning the client
func NewRedisReportCache(cfg config.RedisConfig, opts ...ReportCacheOption) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisReportCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis client.
// The caller keeps ownership of the client.
func NewRedisReportCacheWithClient(client *redis.Client, opts ...ReportCacheOption) *RedisReportCache {
	o := buildOptions(opts)
	return &RedisReportCache{
		client: client,
		prefix: o.prefix,
		ttl:    o.ttl,
		logger: o.logger,
	}
}

func (c *RedisReportCache) key(key string) string {
	return c.prefix + key
}

// Get retrieves a report from cache
func (c *RedisReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	cacheKey := c.key(key)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss for report", zap.String("key", key))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// corrupted entry
		_ = c.client.Del(ctx, cacheKey)
		return false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	c.logger.Debug("Cache hit for report", zap.String("key", key))
	return true, nil
}

// Set stores a report in cache
func (c *RedisReportCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report in cache: %w", err)
	}
	return nil
}

// Generation reads the shared generation counter. A missing counter is 0.
func (c *RedisReportCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, c.key(generationKey)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

// InvalidateAll bumps the generation, then deletes every other key under
// the cache prefix
func (c *RedisReportCache) InvalidateAll(ctx context.Context) error {
	genKey := c.key(generationKey)
	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", defaultScanBatchSize).Iterator()
	var deleted int
	for iter.Next(ctx) {
		if iter.Val() == genKey {
			continue
		}
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cached report: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached reports: %w", err)
	}

	c.logger.Debug("Invalidated cached reports", zap.Int("count", deleted))
	return nil
}

// Close releases the Redis client if the cache created it
func (c *RedisReportCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
