// maintenance.go — обработчик POST /api/v1/maintenance/cleanup.
// Делегирует очистку в SweepService.
package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/cedo-platform/draft-keeper/internal/api/errors"
	"github.com/cedo-platform/draft-keeper/internal/api/generated"
	"github.com/cedo-platform/draft-keeper/internal/service"
)

// CleanupRunner — интерфейс для запуска внеочередной очистки.
// Позволяет тестировать handler без полного SweepService.
type CleanupRunner interface {
	// RunOnce выполняет один проход очистки.
	// Возвращает результат и флаг "уже выполняется".
	RunOnce() (*service.SweepResult, bool)
	// IsInProgress возвращает true, если очистка выполняется.
	IsInProgress() bool
}

// MaintenanceHandler — обработчик endpoints обслуживания.
type MaintenanceHandler struct {
	sweeper CleanupRunner
}

// NewMaintenanceHandler создаёт обработчик maintenance endpoints.
// sweeper может быть nil (заглушка — возвращает пустой результат).
func NewMaintenanceHandler(sweeper ...CleanupRunner) *MaintenanceHandler {
	h := &MaintenanceHandler{}
	if len(sweeper) > 0 {
		h.sweeper = sweeper[0]
	}
	return h
}

// RunCleanup обрабатывает POST /api/v1/maintenance/cleanup.
// Запускает синхронный проход очистки и возвращает результат.
// Если очистка уже выполняется — 409 CLEANUP_IN_PROGRESS.
func (h *MaintenanceHandler) RunCleanup(w http.ResponseWriter, _ *http.Request) {
	// Если sweeper не настроен — возвращаем заглушку
	if h.sweeper == nil {
		now := time.Now().UTC()
		writeJSON(w, http.StatusOK, generated.CleanupResponse{
			StartedAt:      now,
			CompletedAt:    now,
			StaleRemoved:   0,
			ExpiredRemoved: 0,
			Failures:       0,
		})
		return
	}

	startedAt := time.Now().UTC()
	result, inProgress := h.sweeper.RunOnce()
	if inProgress {
		apierrors.CleanupInProgress(w, "Очистка уже выполняется")
		return
	}

	writeJSON(w, http.StatusOK, generated.CleanupResponse{
		StartedAt:      startedAt,
		CompletedAt:    time.Now().UTC(),
		StaleRemoved:   result.StaleRemoved,
		ExpiredRemoved: result.ExpiredRemoved,
		Failures:       result.Failures,
	})
}
