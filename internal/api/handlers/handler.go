// handler.go — APIHandler реализует generated.ServerInterface,
// делегируя вызовы в отдельные handler'ы по доменам.
package handlers

import (
	"net/http"

	"github.com/cedo-platform/draft-keeper/internal/api/generated"
	"github.com/cedo-platform/draft-keeper/internal/server"
)

// APIHandler — единая реализация ServerInterface, собирающая
// все доменные handlers в один объект.
type APIHandler struct {
	drafts      *DraftsHandler
	recovery    *RecoveryHandler
	backup      *BackupHandler
	validation  *ValidateHandler
	system      *SystemHandler
	maintenance *MaintenanceHandler
	health      *HealthHandler
	metrics     *server.MetricsHandler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
func NewAPIHandler(
	drafts *DraftsHandler,
	recovery *RecoveryHandler,
	backup *BackupHandler,
	validation *ValidateHandler,
	system *SystemHandler,
	maintenance *MaintenanceHandler,
	health *HealthHandler,
	metrics *server.MetricsHandler,
) *APIHandler {
	return &APIHandler{
		drafts:      drafts,
		recovery:    recovery,
		backup:      backup,
		validation:  validation,
		system:      system,
		maintenance: maintenance,
		health:      health,
		metrics:     metrics,
	}
}

// --- Секции черновика ---

func (h *APIHandler) SaveSection(w http.ResponseWriter, r *http.Request, draftId generated.DraftId, sectionName generated.SectionName) {
	h.drafts.SaveSection(w, r, draftId, sectionName)
}

func (h *APIHandler) GetSection(w http.ResponseWriter, r *http.Request, draftId generated.DraftId, sectionName generated.SectionName) {
	h.drafts.GetSection(w, r, draftId, sectionName)
}

func (h *APIHandler) DeleteSection(w http.ResponseWriter, r *http.Request, draftId generated.DraftId, sectionName generated.SectionName) {
	h.drafts.DeleteSection(w, r, draftId, sectionName)
}

// --- Восстановление и консолидация ---

func (h *APIHandler) RecoverDraft(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	h.recovery.RecoverDraft(w, r, draftId)
}

func (h *APIHandler) ConsolidateDraft(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	h.recovery.ConsolidateDraft(w, r, draftId)
}

// --- Резервный снимок ---

func (h *APIHandler) CreateBackup(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	h.backup.CreateBackup(w, r, draftId)
}

func (h *APIHandler) GetBackup(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	h.backup.GetBackup(w, r, draftId)
}

// --- Валидация ---

func (h *APIHandler) ValidateSection(w http.ResponseWriter, r *http.Request, sectionName generated.SectionName) {
	h.validation.ValidateSection(w, r, sectionName)
}

// --- System ---

func (h *APIHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	h.system.GetInfo(w, r)
}

// --- Maintenance ---

func (h *APIHandler) RunCleanup(w http.ResponseWriter, r *http.Request) {
	h.maintenance.RunCleanup(w, r)
}

// --- Health ---

func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// --- Metrics ---

func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.GetMetrics(w, r)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)
