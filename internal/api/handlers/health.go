// health.go — обработчики health endpoints для Kubernetes probes.
package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cedo-platform/draft-keeper/internal/config"
)

// serviceName — имя сервиса в health-ответах.
const serviceName = "draft-keeper"

// statusFail — строковая константа для статуса "fail" в health checks.
const statusFail = "fail"

// DependencyHealthChecker — интерфейс для проверки доступности внешних
// зависимостей (Draft API через dephealth).
type DependencyHealthChecker interface {
	Health() map[string]bool
}

// HealthHandler реализует health endpoints: /health/live, /health/ready.
type HealthHandler struct {
	version string
	// dataDir — путь к директории данных (для проверки FS)
	dataDir string
	// walDir — путь к директории WAL (для проверки WAL)
	walDir string
	// deps — проверка внешних зависимостей (nil — без проверки)
	deps DependencyHealthChecker
}

// NewHealthHandler создаёт обработчик health endpoints.
// Без параметров — базовая проверка (для обратной совместимости).
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		version: config.Version,
	}
}

// NewHealthHandlerFull создаёт обработчик health endpoints с реальными
// проверками. deps — проверка Draft API (nil, если dephealth выключен).
func NewHealthHandlerFull(dataDir, walDir string, deps DependencyHealthChecker) *HealthHandler {
	return &HealthHandler{
		version: config.Version,
		dataDir: dataDir,
		walDir:  walDir,
		deps:    deps,
	}
}

// HealthLive обрабатывает GET /health/live.
// Возвращает 200, если процесс жив. Не проверяет зависимости.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   serviceName,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady обрабатывает GET /health/ready.
// Проверяет: файловая система, WAL директория, Draft API.
// Недоступный Draft API никогда не валит readiness — восстановление
// обходится локальными источниками, статус лишь деградирует.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	overallStatus := "ok"
	httpStatus := http.StatusOK

	// Проверка файловой системы
	fsCheck := h.checkFilesystem()
	if fsCheck["status"] != "ok" {
		overallStatus = statusFail
		httpStatus = http.StatusServiceUnavailable
	}

	// Проверка WAL
	walCheck := h.checkWAL()
	if walCheck["status"] != "ok" {
		if overallStatus != statusFail {
			overallStatus = "degraded"
		}
	}

	checks := map[string]any{
		"filesystem": fsCheck,
		"wal":        walCheck,
	}

	// Проверка Draft API (degraded-only)
	if h.deps != nil {
		depCheck := h.checkDraftAPI()
		checks["draft_api"] = depCheck
		if depCheck["status"] != "ok" {
			if overallStatus != statusFail {
				overallStatus = "degraded"
			}
		}
	}

	resp := map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   serviceName,
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// checkFilesystem проверяет доступность директории данных на запись.
func (h *HealthHandler) checkFilesystem() map[string]any {
	if h.dataDir == "" {
		return map[string]any{
			"status":  "ok",
			"message": "Проверка не настроена",
		}
	}

	testFile := filepath.Join(h.dataDir, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": "Директория данных недоступна для записи: " + err.Error(),
		}
	}
	_ = os.Remove(testFile)

	return map[string]any{
		"status": "ok",
	}
}

// checkWAL проверяет доступность директории WAL на запись.
func (h *HealthHandler) checkWAL() map[string]any {
	if h.walDir == "" {
		return map[string]any{
			"status":  "ok",
			"message": "Проверка не настроена",
		}
	}

	testFile := filepath.Join(h.walDir, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": "Директория WAL недоступна для записи: " + err.Error(),
		}
	}
	_ = os.Remove(testFile)

	return map[string]any{
		"status": "ok",
	}
}

// checkDraftAPI проверяет доступность Draft API по данным dephealth.
func (h *HealthHandler) checkDraftAPI() map[string]any {
	health := h.deps.Health()
	if len(health) == 0 {
		return map[string]any{
			"status":  "ok",
			"message": "Проверки ещё не выполнялись",
		}
	}

	for dep, ok := range health {
		if !ok {
			return map[string]any{
				"status":  statusFail,
				"message": "Зависимость недоступна: " + dep,
			}
		}
	}

	return map[string]any{
		"status": "ok",
	}
}
