// Package cache provides caching for rendered charts and query results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Config contains cache configuration.
type Config struct {
	ChartCacheSizeMB int
	ChartTTL         time.Duration
	QueryCacheSize   int
}

// Manager manages chart and query caches.
type Manager struct {
	chartCache *bigcache.BigCache
	queryCache *lru.Cache[string, []byte]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	chartCacheConfig := bigcache.Config{
		Shards:             256,
		LifeWindow:         cfg.ChartTTL,
		CleanWindow:        cfg.ChartTTL / 2,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       512 * 1024, // 512KB per rendered chart
		HardMaxCacheSize:   cfg.ChartCacheSizeMB,
		Verbose:            false,
	}

	chartCache, err := bigcache.New(context.Background(), chartCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart cache: %w", err)
	}

	queryCache, err := lru.New[string, []byte](cfg.QueryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	return &Manager{
		chartCache: chartCache,
		queryCache: queryCache,
	}, nil
}

// GetChart retrieves a rendered chart from cache.
func (m *Manager) GetChart(key string) ([]byte, bool) {
	data, err := m.chartCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetChart stores a rendered chart in cache.
func (m *Manager) SetChart(key string, data []byte) error {
	return m.chartCache.Set(key, data)
}

// GetQuery retrieves a query result from cache.
func (m *Manager) GetQuery(key string) ([]byte, bool) {
	return m.queryCache.Get(key)
}

// SetQuery stores a query result in cache.
func (m *Manager) SetQuery(key string, data []byte) {
	m.queryCache.Add(key, data)
}

// ChartKey generates a cache key for a rendered comparison chart. The
// request payload is hashed so that identical requests share an entry.
func ChartKey(scheme string, payload []byte) string {
	h := sha256.Sum256(payload)
	return "chart:" + scheme + ":" + hex.EncodeToString(h[:])[:16]
}

// LegendKey generates a cache key for a scheme's legend payload.
func LegendKey(scheme string) string {
	return "legend:" + scheme
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"chart_cache_len": m.chartCache.Len(),
		"chart_cache_cap": m.chartCache.Capacity(),
		"query_cache_len": m.queryCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.chartCache.Close()
}
