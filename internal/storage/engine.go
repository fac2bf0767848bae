// engine.go — движок типизированного хранения черновиков.
// Оборачивает Backend конвертом StorageRecord (timestamp, TTL, версия),
// обрабатывает квоту (cleanup + повторная запись), блокировку доступа,
// компрессию файловых дескрипторов и ленивое истечение TTL при чтении.
// Ожидаемые отказы не пробрасываются как ошибки: операции возвращают
// результат с кодом типа, чтобы вызывающий код выбирал деградацию.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cedo-platform/draft-keeper/internal/domain/model"
	"github.com/cedo-platform/draft-keeper/internal/schema"
)

// Метрики операций хранения.
var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedo_dk_storage_operations_total",
		Help: "Количество операций хранилища по типам и результатам",
	}, []string{"store", "op", "result"})

	cleanupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedo_dk_quota_cleanup_runs_total",
		Help: "Количество запусков очистки устаревших записей",
	}, []string{"store"})

	cleanupRemovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedo_dk_quota_cleanup_removed_total",
		Help: "Количество записей, удалённых очисткой устаревших",
	}, []string{"store"})
)

// healthyUsagePercent — порог занятости квоты, ниже которого
// хранилище считается здоровым.
const healthyUsagePercent = 80.0

// Options — параметры движка хранения.
type Options struct {
	// Name — имя экземпляра для логов и метрик (persistent, session)
	Name string
	// MaxSize — квота хранилища в байтах (0 — не учитывается в Info)
	MaxSize int64
	// CompressionThreshold — порог компрессии файлового дескриптора
	// в байтах сериализованного представления
	CompressionThreshold int
	// Staleness — возраст записи, после которого очистка квоты её удаляет
	Staleness time.Duration
	// MaxAttempts — максимум попыток записи при транзиентных ошибках
	MaxAttempts int
	// RetryBaseDelay — базовая задержка экспоненциального backoff
	RetryBaseDelay time.Duration
}

// withDefaults заполняет нулевые параметры значениями по умолчанию.
func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "persistent"
	}
	if o.CompressionThreshold <= 0 {
		o.CompressionThreshold = 262144
	}
	if o.Staleness <= 0 {
		o.Staleness = 24 * time.Hour
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 50 * time.Millisecond
	}
	return o
}

// SetOptions — параметры операции записи.
type SetOptions struct {
	// ExpiresMs — относительный TTL записи в миллисекундах (0 — бессрочно)
	ExpiresMs int64
}

// SetResult — результат операции записи.
type SetResult struct {
	// Success — запись сохранена
	Success bool `json:"success"`
	// Error — человекочитаемое описание отказа
	Error string `json:"error,omitempty"`
	// Type — код типа отказа (QuotaExceededError, SecurityError, ...)
	Type string `json:"type,omitempty"`
	// Compressed — в значении были сжаты файловые дескрипторы
	Compressed bool `json:"compressed,omitempty"`
}

// Engine — движок типизированного хранения над Backend.
type Engine struct {
	backend  Backend
	registry *schema.Registry
	opts     Options
	logger   *slog.Logger
}

// NewEngine создаёт движок хранения. backend == nil допустим:
// все операции вернут StorageUnsupported / значение по умолчанию.
func NewEngine(backend Backend, registry *schema.Registry, opts Options, logger *slog.Logger) *Engine {
	o := opts.withDefaults()
	return &Engine{
		backend:  backend,
		registry: registry,
		opts:     o,
		logger:   logger.With(slog.String("component", "storage"), slog.String("store", o.Name)),
	}
}

// Set сериализует значение, сжимает файловые дескрипторы сверх порога
// и сохраняет запись под ключом. Отказы возвращаются результатом:
// квота (после cleanup и повторной записи), блокировка доступа,
// несериализуемое значение, отсутствующий бэкенд.
func (e *Engine) Set(ctx context.Context, key string, value any, opts *SetOptions) SetResult {
	if e.backend == nil {
		return e.setFailure(key, "set", "хранилище недоступно", TypeUnsupported)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return e.setFailure(key, "set", "значение не сериализуется в JSON", TypeSerialization)
	}

	raw, compressed := e.compressFileDescriptors(raw)

	now := time.Now().UTC()
	record := model.StorageRecord{
		Value:     raw,
		Timestamp: now.UnixMilli(),
		Version:   model.RecordVersion,
	}
	if opts != nil && opts.ExpiresMs > 0 {
		exp := now.UnixMilli() + opts.ExpiresMs
		record.Expires = &exp
	}

	data, err := json.Marshal(&record)
	if err != nil {
		return e.setFailure(key, "set", "значение не сериализуется в JSON", TypeSerialization)
	}

	if err := e.write(ctx, key, data); err != nil {
		switch {
		case errors.Is(err, ErrQuotaExceeded):
			return e.setFailure(key, "set", "квота хранилища исчерпана даже после очистки", TypeQuotaExceeded)
		case errors.Is(err, ErrSecurity):
			return e.setFailure(key, "set", "доступ к хранилищу заблокирован", TypeSecurity)
		default:
			e.logger.Error("Запись не удалась после всех попыток",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			operationsTotal.WithLabelValues(e.opts.Name, "set", "error").Inc()
			return SetResult{Success: false, Error: "ошибка записи: " + err.Error()}
		}
	}

	operationsTotal.WithLabelValues(e.opts.Name, "set", "ok").Inc()
	return SetResult{Success: true, Compressed: compressed}
}

// setFailure логирует отказ записи и формирует результат.
func (e *Engine) setFailure(key, op, msg, errType string) SetResult {
	e.logger.Warn("Операция хранилища отклонена",
		slog.String("key", key),
		slog.String("op", op),
		slog.String("type", errType),
	)
	operationsTotal.WithLabelValues(e.opts.Name, op, errType).Inc()
	return SetResult{Success: false, Error: msg, Type: errType}
}

// write выполняет запись с восстановлением: очистка квоты с одной
// повторной попыткой, bounded exponential backoff для транзиентных
// ошибок, немедленный отказ при блокировке доступа.
func (e *Engine) write(ctx context.Context, key string, data []byte) error {
	cleanupDone := false
	attempt := 0

	for {
		err := e.backend.Set(key, data)
		if err == nil {
			return nil
		}

		switch {
		case errors.Is(err, ErrQuotaExceeded):
			if cleanupDone {
				return err
			}
			stats := e.cleanupStale(time.Now().UTC())
			cleanupDone = true
			e.logger.Warn("Квота исчерпана, выполнена очистка устаревших записей",
				slog.String("key", key),
				slog.Int("removed", stats.Removed()),
			)
			// Одна повторная попытка сразу после очистки

		case errors.Is(err, ErrSecurity):
			return err

		default:
			attempt++
			if attempt >= e.opts.MaxAttempts {
				return err
			}
			delay := e.opts.RetryBaseDelay << (attempt - 1)
			e.logger.Debug("Транзиентная ошибка записи, повтор",
				slog.String("key", key),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return err
			case <-time.After(delay):
			}
		}
	}
}

// Get читает запись и декодирует её значение в dest.
// Возвращает false (значение вызывающего кода по умолчанию остаётся
// в силе) при: отсутствии ключа, истёкшем TTL (запись при этом
// удаляется — ленивое истечение), повреждённом JSON, отсутствующем
// бэкенде. Никогда не возвращает ошибку.
func (e *Engine) Get(ctx context.Context, key string, dest any) bool {
	record, ok := e.GetRecord(ctx, key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(record.Value, dest); err != nil {
		e.logger.Warn("Значение записи не декодируется",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		operationsTotal.WithLabelValues(e.opts.Name, "get", TypeSerialization).Inc()
		return false
	}

	operationsTotal.WithLabelValues(e.opts.Name, "get", "ok").Inc()
	return true
}

// GetRecord читает конверт записи без декодирования значения.
// Ленивое истечение: просроченная запись удаляется, возвращается false.
func (e *Engine) GetRecord(_ context.Context, key string) (*model.StorageRecord, bool) {
	if e.backend == nil {
		return nil, false
	}

	data, err := e.backend.Get(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			e.logger.Warn("Ошибка чтения записи",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		operationsTotal.WithLabelValues(e.opts.Name, "get", "miss").Inc()
		return nil, false
	}

	var record model.StorageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// Повреждённый конверт — отсутствие данных, не ошибка
		e.logger.Warn("Повреждённый конверт записи",
			slog.String("key", key),
		)
		operationsTotal.WithLabelValues(e.opts.Name, "get", TypeSerialization).Inc()
		return nil, false
	}

	if record.IsExpired(time.Now().UTC()) {
		if err := e.backend.Remove(key); err != nil {
			e.logger.Warn("Не удалось удалить истёкшую запись",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		e.logger.Debug("Запись истекла и удалена при чтении",
			slog.String("key", key),
		)
		operationsTotal.WithLabelValues(e.opts.Name, "get", "expired").Inc()
		return nil, false
	}

	return &record, true
}

// Remove удаляет ключ. Отсутствующий ключ и отсутствующий бэкенд — no-op.
func (e *Engine) Remove(_ context.Context, key string) {
	if e.backend == nil {
		return
	}
	if err := e.backend.Remove(key); err != nil {
		e.logger.Warn("Не удалось удалить ключ",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		operationsTotal.WithLabelValues(e.opts.Name, "remove", "error").Inc()
		return
	}
	operationsTotal.WithLabelValues(e.opts.Name, "remove", "ok").Inc()
}

// Clear удаляет все ключи хранилища.
func (e *Engine) Clear(_ context.Context) {
	if e.backend == nil {
		return
	}

	// Бэкенд может поддерживать быструю очистку
	if c, ok := e.backend.(interface{ Clear() error }); ok {
		if err := c.Clear(); err != nil {
			e.logger.Warn("Не удалось очистить хранилище",
				slog.String("error", err.Error()),
			)
		}
		return
	}

	keys, err := e.backend.Keys()
	if err != nil {
		e.logger.Warn("Не удалось перечислить ключи для очистки",
			slog.String("error", err.Error()),
		)
		return
	}
	for _, key := range keys {
		if err := e.backend.Remove(key); err != nil {
			e.logger.Warn("Не удалось удалить ключ при очистке",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
}

// CleanupStats — итог одного прохода очистки.
type CleanupStats struct {
	// Stale — удалено записей старше порога устарелости
	Stale int
	// Expired — удалено записей с истёкшим TTL
	Expired int
	// Failures — записей, которые удалить не удалось
	Failures int
}

// Removed возвращает общее количество удалённых записей.
func (s CleanupStats) Removed() int {
	return s.Stale + s.Expired
}

// CleanupStale удаляет записи старше порога устарелости и записи с
// истёкшим TTL. Возвращает количество удалённых записей. Вызывается
// движком при исчерпании квоты и maintenance endpoint.
func (e *Engine) CleanupStale(_ context.Context) int {
	return e.cleanupStale(time.Now().UTC()).Removed()
}

// Sweep выполняет один проход очистки с детализацией по причинам
// удаления. Используется фоновым sweeper.
func (e *Engine) Sweep(_ context.Context) CleanupStats {
	return e.cleanupStale(time.Now().UTC())
}

// staleKey — ключ, подлежащий удалению, с причиной.
type staleKey struct {
	key     string
	expired bool
}

// cleanupStale — сканирование и удаление устаревших записей.
// Ключи данных формы и метаданных файлов удаляются в первую очередь,
// зарезервированный бэкап — никогда.
func (e *Engine) cleanupStale(now time.Time) CleanupStats {
	var stats CleanupStats
	if e.backend == nil {
		return stats
	}

	cleanupRunsTotal.WithLabelValues(e.opts.Name).Inc()

	keys, err := e.backend.Keys()
	if err != nil {
		e.logger.Warn("Очистка: не удалось перечислить ключи",
			slog.String("error", err.Error()),
		)
		return stats
	}

	// Устаревшие ключи с разбиением по приоритету очистки
	var priority, rest []staleKey
	for _, key := range keys {
		data, err := e.backend.Get(key)
		if err != nil {
			continue
		}
		var record model.StorageRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		stale := record.Age(now) > e.opts.Staleness
		expired := record.IsExpired(now)
		if !stale && !expired {
			continue
		}
		sk := staleKey{key: key, expired: expired}
		if e.registry != nil && !e.registry.IsCleanupPriority(key) {
			if key == schema.BackupKey {
				continue
			}
			rest = append(rest, sk)
			continue
		}
		priority = append(priority, sk)
	}

	sortStaleKeys(priority)
	sortStaleKeys(rest)

	for _, sk := range append(priority, rest...) {
		if err := e.backend.Remove(sk.key); err != nil {
			e.logger.Warn("Очистка: не удалось удалить ключ",
				slog.String("key", sk.key),
				slog.String("error", err.Error()),
			)
			stats.Failures++
			continue
		}
		if sk.expired {
			stats.Expired++
		} else {
			stats.Stale++
		}
		e.logger.Debug("Очистка: удалена устаревшая запись",
			slog.String("key", sk.key),
		)
	}

	if removed := stats.Removed(); removed > 0 {
		cleanupRemovedTotal.WithLabelValues(e.opts.Name).Add(float64(removed))
		e.logger.Info("Очистка устаревших записей завершена",
			slog.Int("stale", stats.Stale),
			slog.Int("expired", stats.Expired),
			slog.Int("failures", stats.Failures),
		)
	}

	return stats
}

// sortStaleKeys упорядочивает ключи для детерминированного удаления.
func sortStaleKeys(keys []staleKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].key < keys[j].key
	})
}

// Info собирает диагностику хранилища: перечисляет все ключи,
// суммирует размеры сериализованных записей и классифицирует ключи
// по реестру схем.
func (e *Engine) Info(_ context.Context) *model.StorageInfo {
	info := &model.StorageInfo{MaxSize: e.opts.MaxSize, IsHealthy: true}
	if e.backend == nil {
		return info
	}

	keys, err := e.backend.Keys()
	if err != nil {
		e.logger.Warn("Диагностика: не удалось перечислить ключи",
			slog.String("error", err.Error()),
		)
		return info
	}

	for _, key := range keys {
		data, err := e.backend.Get(key)
		if err != nil {
			continue
		}
		info.TotalKeys++
		info.TotalSize += int64(len(data))
		if e.registry != nil {
			if e.registry.IsFormDataKey(key) {
				info.FormDataKeys++
			}
			if e.registry.IsFileDataKey(key) {
				info.FileDataKeys++
			}
		}
	}

	if e.opts.MaxSize > 0 {
		info.PercentageUsed = float64(info.TotalSize) / float64(e.opts.MaxSize) * 100
		info.AvailableSpace = e.opts.MaxSize - info.TotalSize
		if info.AvailableSpace < 0 {
			info.AvailableSpace = 0
		}
		info.IsHealthy = info.PercentageUsed < healthyUsagePercent
	}

	return info
}

// Name возвращает имя экземпляра движка.
func (e *Engine) Name() string {
	return e.opts.Name
}

// compressFileDescriptors рекурсивно обходит значение и сжимает
// файловые дескрипторы, чьё сериализованное представление превышает
// порог: dataUrl отбрасывается, compressed=true, hasData=true.
// Метаданные сохраняются, payload теряется необратимо.
func (e *Engine) compressFileDescriptors(raw json.RawMessage) (json.RawMessage, bool) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return raw, false
	}

	changed := compressValue(value, e.opts.CompressionThreshold)
	if !changed {
		return raw, false
	}

	out, err := json.Marshal(value)
	if err != nil {
		return raw, false
	}

	e.logger.Info("Файловые дескрипторы сжаты для экономии квоты",
		slog.Int("threshold", e.opts.CompressionThreshold),
	)
	return out, true
}

// compressValue обходит структуру значения. Возвращает true, если
// хотя бы один дескриптор был сжат.
func compressValue(value any, threshold int) bool {
	changed := false
	switch v := value.(type) {
	case map[string]any:
		if isFileDescriptor(v) {
			if compressDescriptor(v, threshold) {
				changed = true
			}
			return changed
		}
		for _, inner := range v {
			if compressValue(inner, threshold) {
				changed = true
			}
		}
	case []any:
		for _, inner := range v {
			if compressValue(inner, threshold) {
				changed = true
			}
		}
	}
	return changed
}

// isFileDescriptor распознаёт файловый дескриптор по обязательным
// полям name/size/type.
func isFileDescriptor(m map[string]any) bool {
	if _, ok := m["name"].(string); !ok {
		return false
	}
	if _, ok := m["size"].(float64); !ok {
		return false
	}
	if _, ok := m["type"].(string); !ok {
		return false
	}
	return true
}

// compressDescriptor сжимает один дескриптор, если его сериализованный
// размер превысил порог и есть что отбрасывать.
func compressDescriptor(m map[string]any, threshold int) bool {
	dataURL, _ := m["dataUrl"].(string)
	if dataURL == "" {
		return false
	}

	serialized, err := json.Marshal(m)
	if err != nil || len(serialized) <= threshold {
		return false
	}

	delete(m, "dataUrl")
	m["compressed"] = true
	m["hasData"] = true
	return true
}
