// metrics.go — Prometheus HTTP метрики draft-keeper.
// Регистрирует метрики: cedo_dk_http_requests_total,
// cedo_dk_http_request_duration_seconds. Бизнес-метрики (операции
// хранилища, очистка, бэкапы) регистрируются в соответствующих пакетах.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cedo_dk_http_requests_total",
			Help: "Общее количество HTTP-запросов к draft-keeper",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cedo_dk_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к draft-keeper в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из main)
var (
	// StorageKeys — текущее количество ключей в хранилище (gauge).
	StorageKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cedo_dk_storage_keys",
			Help: "Текущее количество ключей в хранилище",
		},
		[]string{"store"},
	)

	// StorageUsedBytes — объём занятой квоты хранилища (gauge).
	StorageUsedBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cedo_dk_storage_used_bytes",
			Help: "Объём занятой квоты хранилища в байтах",
		},
		[]string{"store"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем UUID и имя секции на {id}/{section} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет идентификатор черновика и имя секции на
// {id}/{section} для предотвращения взрывного роста кардинальности метрик.
// /api/v1/drafts/a1b2.../sections/organization → /api/v1/drafts/{id}/sections/{section}
func normalizePath(path string) string {
	// Простые паттерны для основных endpoints
	switch {
	case path == "/health/live":
		return "/health/live"
	case path == "/health/ready":
		return "/health/ready"
	case path == "/metrics":
		return "/metrics"
	case path == "/api/v1/info":
		return "/api/v1/info"
	case path == "/api/v1/maintenance/cleanup":
		return "/api/v1/maintenance/cleanup"
	case strings.HasPrefix(path, "/api/v1/validate/"):
		return "/api/v1/validate/{section}"
	case isUUIDSegment(path, "/api/v1/drafts/"):
		suffix := path[len("/api/v1/drafts/")+36:]
		switch {
		case suffix == "/recover":
			return "/api/v1/drafts/{id}/recover"
		case suffix == "/consolidate":
			return "/api/v1/drafts/{id}/consolidate"
		case suffix == "/backup":
			return "/api/v1/drafts/{id}/backup"
		case strings.HasPrefix(suffix, "/sections/"):
			return "/api/v1/drafts/{id}/sections/{section}"
		}
	}
	return path
}

// isUUIDSegment проверяет, начинается ли сегмент пути после prefix с UUID.
func isUUIDSegment(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) < len(prefix)+36 {
		return false
	}
	segment := path[len(prefix) : len(prefix)+36]
	// Проверяем формат UUID: 8-4-4-4-12
	for i, c := range segment {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			if c != '-' {
				return false
			}
		} else {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
				return false
			}
		}
	}
	return true
}
