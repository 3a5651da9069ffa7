package cache

import (
	"sync"
	"time"

	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/shift"
	"go.uber.org/zap"
)

// freshness is the share of the refresh interval a stored document stays
// servable, so a tick landing right on the interval still refetches
const freshness = 0.9

// MemoryCache is an in-memory implementation of the OrderCache interface. It
// keeps one document: the last successful one
type MemoryCache struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	key      shift.Key
	order    *core.ParsedOrder
	storedAt time.Time
}

// NewMemoryCache creates a new in-memory cache. now defaults to time.Now
func NewMemoryCache(logger *zap.Logger, interval time.Duration, now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		logger:   logger,
		interval: interval,
		now:      now,
	}
}

// Get returns a copy of the stored document if it belongs to key and is
// younger than 90% of the refresh interval
func (c *MemoryCache) Get(key shift.Key) (*core.ParsedOrder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.order == nil || c.key != key {
		return nil, false
	}
	ttl := time.Duration(freshness * float64(c.interval))
	if c.now().Sub(c.storedAt) >= ttl {
		return nil, false
	}
	return c.order.Clone(), true
}

// Put stores order under key. Failed documents are ignored
func (c *MemoryCache) Put(key shift.Key, order *core.ParsedOrder) {
	if order == nil || !order.OK {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = key
	c.order = order.Clone()
	c.storedAt = c.now()
	c.logger.Debug("Stored order in cache",
		zap.String("key", key.String()),
		zap.String("sheet", order.SheetName()))
}

// Stale returns a copy of the last stored document whatever its key or age
func (c *MemoryCache) Stale() (*core.ParsedOrder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.order == nil {
		return nil, false
	}
	return c.order.Clone(), true
}
