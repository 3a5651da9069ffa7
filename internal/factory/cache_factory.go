package factory

import (
	"time"

	"github.com/mikey/orden-vaciado/internal/adapters/cache"
	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates the order cache based on configuration
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

// CreateOrderCache creates a cache whose freshness follows the refresh interval
func (f *CacheFactory) CreateOrderCache() (core.OrderCache, error) {
	interval, err := f.GetRefreshInterval()
	if err != nil {
		return nil, err
	}
	return cache.NewMemoryCache(f.logger, interval, nil), nil
}

// GetRefreshInterval returns the configured refresh interval
func (f *CacheFactory) GetRefreshInterval() (time.Duration, error) {
	order, err := f.cfg.GetOrder()
	if err != nil {
		return 0, err
	}
	return order.RefreshInterval, nil
}
