// Cache — LRU-кэш черновиков с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.

package draftapi

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэша черновиков.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cedo_dk_draft_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш черновиков.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cedo_dk_draft_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша черновиков.",
	})
)

// Cache — LRU-кэш черновиков с автоматическим TTL. Смягчает нагрузку
// на Draft API при повторных проходах восстановления одного черновика.
type Cache struct {
	cache *expirable.LRU[string, *Draft]
}

// NewCache создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество черновиков в кэше.
// ttl — время жизни записи после добавления.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	cache := expirable.NewLRU[string, *Draft](maxSize, nil, ttl)
	return &Cache{cache: cache}
}

// Get возвращает черновик из кэша по идентификатору.
// Возвращает (черновик, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *Cache) Get(draftID string) (*Draft, bool) {
	val, ok := c.cache.Get(draftID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет черновик в кэше.
func (c *Cache) Set(draftID string, draft *Draft) {
	c.cache.Add(draftID, draft)
}

// Delete удаляет черновик из кэша (инвалидация после записи секции).
func (c *Cache) Delete(draftID string) {
	c.cache.Remove(draftID)
}
