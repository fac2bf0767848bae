// BackupService — резервная копия черновика целиком под
// зарезервированным ключом постоянного хранилища.

package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cedo-platform/draft-keeper/internal/schema"
	"github.com/cedo-platform/draft-keeper/internal/storage"
)

// BackupVersion — версия формата резервной копии.
const BackupVersion = "1.0"

// backupFailuresTotal — системный сбой бэкапа не блокирует вызывающий
// код, но мониторинг должен его видеть.
var backupFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cedo_dk_backup_failures_total",
	Help: "Количество неудачных созданий резервной копии черновика.",
})

// BackupError — типизированный отказ создания резервной копии.
// Оборачивает код типа отказа хранилища (QuotaExceededError,
// SecurityError, ...), чтобы мониторинг отличал системные сбои бэкапа
// от отказов основного пути записи.
type BackupError struct {
	Type    string
	Message string
}

func (e *BackupError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("резервная копия не создана: %s", e.Message)
	}
	return fmt.Sprintf("резервная копия не создана (%s): %s", e.Type, e.Message)
}

// BackupService — создание и восстановление резервной копии черновика.
// Копия живёт независимо от секционных записей: без TTL, очистка
// устаревших её не трогает, восстановление не перезаписывает секции.
type BackupService struct {
	store  *storage.Engine
	logger *slog.Logger
}

// NewBackupService создаёт сервис резервного копирования над
// постоянным хранилищем.
func NewBackupService(store *storage.Engine, logger *slog.Logger) *BackupService {
	return &BackupService{
		store:  store,
		logger: logger.With(slog.String("component", "backup")),
	}
}

// Create сохраняет снимок черновика: поля черновика плюс
// backupTimestamp (epoch-ms) и backupVersion, плоско, под
// зарезервированным ключом. Предыдущий снимок перезаписывается.
// Отказ типизирован (*BackupError), логируется и считается в метрике;
// вызывающий код решает, глотать его или нет — основной поток он
// блокировать не должен.
func (b *BackupService) Create(ctx context.Context, draft map[string]any) error {
	snapshot := make(map[string]any, len(draft)+2)
	maps.Copy(snapshot, draft)
	snapshot["backupTimestamp"] = time.Now().UTC().UnixMilli()
	snapshot["backupVersion"] = BackupVersion

	result := b.store.Set(ctx, schema.BackupKey, snapshot, nil)
	if !result.Success {
		backupFailuresTotal.Inc()
		b.logger.Warn("Создание резервной копии не удалось",
			slog.String("type", result.Type),
			slog.String("error", result.Error),
		)
		return &BackupError{Type: result.Type, Message: result.Error}
	}

	b.logger.Debug("Резервная копия черновика сохранена",
		slog.Int("fields", len(draft)),
	)
	return nil
}

// Restore читает снимок черновика. Возвращает false при отсутствии
// ключа или повреждённом JSON — никогда не возвращает ошибку.
func (b *BackupService) Restore(ctx context.Context) (map[string]any, bool) {
	var draft map[string]any
	if !b.store.Get(ctx, schema.BackupKey, &draft) {
		return nil, false
	}
	return draft, true
}
