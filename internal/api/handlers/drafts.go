// drafts.go — HTTP handlers секций черновика: автосохранение,
// чтение, удаление. Демон однопользовательский: пространство ключей
// фиксировано реестром схем, draftId идентифицирует черновик для
// удалённого Draft API и адресации ресурса.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/cedo-platform/draft-keeper/internal/api/errors"
	"github.com/cedo-platform/draft-keeper/internal/api/generated"
	"github.com/cedo-platform/draft-keeper/internal/schema"
	"github.com/cedo-platform/draft-keeper/internal/storage"
)

// DraftsHandler — обработчик endpoints секций черновика.
type DraftsHandler struct {
	persistent *storage.Engine
	registry   *schema.Registry
}

// NewDraftsHandler создаёт обработчик секций черновика.
func NewDraftsHandler(persistent *storage.Engine, registry *schema.Registry) *DraftsHandler {
	return &DraftsHandler{
		persistent: persistent,
		registry:   registry,
	}
}

// SaveSection обрабатывает PUT /api/v1/drafts/{draftId}/sections/{sectionName}.
// Отказы хранилища (квота, блокировка, несериализуемое значение)
// возвращаются внутри SetResult со статусом 200 — контракт
// автосохранения не превращает их в HTTP-ошибки.
func (h *DraftsHandler) SaveSection(w http.ResponseWriter, r *http.Request, _ generated.DraftId, sectionName generated.SectionName) {
	sec, ok := h.registry.Section(sectionName)
	if !ok {
		apierrors.NotFound(w, fmt.Sprintf("Секция %s не зарегистрирована", sectionName))
		return
	}

	var req generated.SaveSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}
	if req.Value == nil {
		apierrors.ValidationError(w, "Поле 'value' обязательно")
		return
	}

	var opts *storage.SetOptions
	if req.ExpiresMs != nil {
		if *req.ExpiresMs < 0 {
			apierrors.ValidationError(w, "Поле 'expiresMs' не может быть отрицательным")
			return
		}
		opts = &storage.SetOptions{ExpiresMs: *req.ExpiresMs}
	}

	result := h.persistent.Set(r.Context(), sec.CurrentKey, req.Value, opts)

	writeJSON(w, http.StatusOK, storageToAPISetResult(result))
}

// GetSection обрабатывает GET /api/v1/drafts/{draftId}/sections/{sectionName}.
// Отсутствующая, истёкшая или повреждённая запись — 404.
func (h *DraftsHandler) GetSection(w http.ResponseWriter, r *http.Request, _ generated.DraftId, sectionName generated.SectionName) {
	sec, ok := h.registry.Section(sectionName)
	if !ok {
		apierrors.NotFound(w, fmt.Sprintf("Секция %s не зарегистрирована", sectionName))
		return
	}

	record, ok := h.persistent.GetRecord(r.Context(), sec.CurrentKey)
	if !ok {
		apierrors.NotFound(w, fmt.Sprintf("Секция %s не сохранена", sectionName))
		return
	}

	var value map[string]interface{}
	if err := json.Unmarshal(record.Value, &value); err != nil {
		// GetRecord уже отфильтровал повреждённый конверт; повреждение
		// значения внутри валидного конверта трактуется так же
		apierrors.NotFound(w, fmt.Sprintf("Секция %s не сохранена", sectionName))
		return
	}

	writeJSON(w, http.StatusOK, generated.SectionRecord{
		Value:     value,
		Timestamp: record.Timestamp,
		Expires:   record.Expires,
		Version:   record.Version,
	})
}

// DeleteSection обрабатывает DELETE /api/v1/drafts/{draftId}/sections/{sectionName}.
// Удаление отсутствующей секции — тоже успех (204).
func (h *DraftsHandler) DeleteSection(w http.ResponseWriter, r *http.Request, _ generated.DraftId, sectionName generated.SectionName) {
	sec, ok := h.registry.Section(sectionName)
	if !ok {
		apierrors.NotFound(w, fmt.Sprintf("Секция %s не зарегистрирована", sectionName))
		return
	}

	h.persistent.Remove(r.Context(), sec.CurrentKey)

	w.WriteHeader(http.StatusNoContent)
}

// storageToAPISetResult преобразует результат движка в API-формат.
func storageToAPISetResult(res storage.SetResult) generated.SetResult {
	out := generated.SetResult{Success: res.Success}
	if res.Error != "" {
		msg := res.Error
		out.Error = &msg
	}
	if res.Type != "" {
		t := generated.SetResultType(res.Type)
		out.Type = &t
	}
	if res.Compressed {
		compressed := true
		out.Compressed = &compressed
	}
	return out
}

// writeJSON — запись JSON-ответа с указанным статусом.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
