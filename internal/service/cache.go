// cache.go — LRU-кэш метаданных записей каталога с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable. Используется на пути
// чтения содержимого; запись инвалидируется при смене видимости.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gofilestore/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fm_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш метаданных",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fm_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша метаданных",
	})
)

// CacheService — per-process LRU-кэш метаданных каталога.
type CacheService struct {
	cache *expirable.LRU[string, *model.FileNode]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.FileNode](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает запись каталога из кэша по hex-идентификатору.
func (c *CacheService) Get(fileID string) (*model.FileNode, bool) {
	val, ok := c.cache.Get(fileID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Add помещает запись каталога в кэш.
func (c *CacheService) Add(fileID string, node *model.FileNode) {
	c.cache.Add(fileID, node)
}

// Remove удаляет запись из кэша (инвалидация при смене видимости).
func (c *CacheService) Remove(fileID string) {
	c.cache.Remove(fileID)
}

// Len возвращает текущее количество записей в кэше.
func (c *CacheService) Len() int {
	return c.cache.Len()
}
