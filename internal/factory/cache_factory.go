package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/cache"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository based on the configuration
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheConfig := f.cfg.GetCache()

	switch cacheConfig.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, cacheConfig.CleanupFrequency), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheConfig.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheConfig.SQLitePath, f.logger, cacheConfig.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(cacheConfig.MySQLDSN, f.logger, cacheConfig.CleanupFrequency)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return cache.NewRedisCache(ctx, &redis.Options{
			Addr:     cacheConfig.RedisAddr,
			Password: cacheConfig.RedisPassword,
			DB:       cacheConfig.RedisDB,
		}, cacheConfig.RedisKeyPrefix, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheConfig.Type)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() time.Duration {
	return f.cfg.GetCache().TTL
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetCache().Enabled
}
