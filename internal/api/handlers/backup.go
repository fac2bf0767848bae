// backup.go — HTTP handlers резервного снимка черновика.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/cedo-platform/draft-keeper/internal/api/errors"
	"github.com/cedo-platform/draft-keeper/internal/api/generated"
	"github.com/cedo-platform/draft-keeper/internal/service"
)

// BackupHandler — обработчик endpoints резервного снимка.
type BackupHandler struct {
	backup *service.BackupService
}

// NewBackupHandler создаёт обработчик резервного снимка.
func NewBackupHandler(backup *service.BackupService) *BackupHandler {
	return &BackupHandler{backup: backup}
}

// CreateBackup обрабатывает POST /api/v1/drafts/{draftId}/backup.
// Бэкап — операция «повезёт — не повезёт»: типизированный отказ
// хранилища проглатывается сервисом, ответ всегда 204. Клиент не
// должен менять поведение из-за неудавшегося бэкапа.
func (h *BackupHandler) CreateBackup(w http.ResponseWriter, r *http.Request, _ generated.DraftId) {
	var req generated.BackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}
	if req.Draft == nil {
		apierrors.ValidationError(w, "Поле 'draft' обязательно")
		return
	}

	_ = h.backup.Create(r.Context(), req.Draft)

	w.WriteHeader(http.StatusNoContent)
}

// GetBackup обрабатывает GET /api/v1/drafts/{draftId}/backup.
func (h *BackupHandler) GetBackup(w http.ResponseWriter, r *http.Request, _ generated.DraftId) {
	snapshot, ok := h.backup.Restore(r.Context())
	if !ok {
		apierrors.NotFound(w, "Резервный снимок не найден")
		return
	}

	writeJSON(w, http.StatusOK, generated.BackupSnapshot(snapshot))
}
