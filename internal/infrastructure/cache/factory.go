package cache

import (
	"github.com/salesdash/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewReportCache builds the report cache described by the configuration.
// It returns nil when caching is disabled. When Redis is enabled but
// unreachable the cache falls back to process memory.
func NewReportCache(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, logger *zap.Logger) ReportCache {
	if !cacheCfg.Enabled {
		return nil
	}

	opts := []ReportCacheOption{
		WithTTL(cacheCfg.TTL),
		WithKeyPrefix(cacheCfg.KeyPrefix),
		WithLogger(logger),
	}

	if redisCfg.Enabled {
		redisCache, err := NewRedisReportCache(redisCfg, opts...)
		if err == nil {
			logger.Info("Report cache using Redis", zap.String("addr", redisCfg.Addr()))
			return redisCache
		}
		logger.Warn("Redis unavailable, report cache falling back to memory", zap.Error(err))
	}

	logger.Info("Report cache using process memory")
	return NewInMemoryReportCache(opts...)
}
