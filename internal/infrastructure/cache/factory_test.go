package cache

import (
	"testing"
	"time"

	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewReportCache(t *testing.T) {
	logger := zap.NewNop()

	t.Run("disabled returns nil", func(t *testing.T) {
		c := NewReportCache(config.CacheConfig{Enabled: false}, config.RedisConfig{}, logger)
		assert.Nil(t, c)
	})

	t.Run("memory when redis disabled", func(t *testing.T) {
		c := NewReportCache(config.CacheConfig{Enabled: true, TTL: time.Minute}, config.RedisConfig{}, logger)
		mem, ok := c.(*InMemoryReportCache)
		assert.True(t, ok)
		assert.Equal(t, time.Minute, mem.ttl)
	})

	t.Run("falls back to memory when redis unreachable", func(t *testing.T) {
		c := NewReportCache(
			config.CacheConfig{Enabled: true},
			config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
			logger,
		)
		_, ok := c.(*InMemoryReportCache)
		assert.True(t, ok)
	})
}
