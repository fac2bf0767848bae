// recovery.go — HTTP handlers восстановления и консолидации черновика.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apierrors "github.com/cedo-platform/draft-keeper/internal/api/errors"
	"github.com/cedo-platform/draft-keeper/internal/api/generated"
	"github.com/cedo-platform/draft-keeper/internal/service"
)

// RecoveryHandler — обработчик endpoints восстановления.
type RecoveryHandler struct {
	recovery    *service.RecoveryService
	consolidate *service.ConsolidateService
}

// NewRecoveryHandler создаёт обработчик восстановления.
func NewRecoveryHandler(recovery *service.RecoveryService, consolidate *service.ConsolidateService) *RecoveryHandler {
	return &RecoveryHandler{
		recovery:    recovery,
		consolidate: consolidate,
	}
}

// RecoverDraft обрабатывает POST /api/v1/drafts/{draftId}/recover.
// Восстановление не возвращает ошибок: исчерпание всех источников —
// это валидный результат {isValid: false, source: "none"}, статус 200.
func (h *RecoveryHandler) RecoverDraft(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	var req generated.RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}
	if req.SectionName == "" {
		apierrors.ValidationError(w, "Поле 'sectionName' обязательно")
		return
	}

	var current, fallback map[string]any
	if req.CurrentData != nil {
		current = *req.CurrentData
	}
	if req.InMemoryFallback != nil {
		fallback = *req.InMemoryFallback
	}

	result := h.recovery.RecoverSection(r.Context(), draftId.String(), req.SectionName, current, fallback)

	out := generated.RecoveryResult{
		IsValid: result.IsValid,
		Source:  result.Source,
	}
	if result.Data != nil {
		out.Data = &result.Data
	}
	if len(result.MissingFields) > 0 {
		missing := result.MissingFields
		out.MissingFields = &missing
	}

	writeJSON(w, http.StatusOK, out)
}

// ConsolidateDraft обрабатывает POST /api/v1/drafts/{draftId}/consolidate.
// Единственная операция, способная отказать по доменной причине:
// невосстановимая базовая секция — 409 RECOVERY_EXHAUSTED.
func (h *RecoveryHandler) ConsolidateDraft(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	var req generated.ConsolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}

	var other, currentBase, fallbackBase map[string]any
	if req.OtherSections != nil {
		other = *req.OtherSections
	}
	if req.CurrentBase != nil {
		currentBase = *req.CurrentBase
	}
	if req.FallbackBase != nil {
		fallbackBase = *req.FallbackBase
	}

	result, err := h.consolidate.Consolidate(r.Context(), draftId.String(), other, currentBase, fallbackBase)
	if err != nil {
		var missing *service.MissingBaseDataError
		if errors.As(err, &missing) {
			apierrors.RecoveryExhausted(w, missing.Error())
			return
		}
		apierrors.InternalError(w, "Ошибка консолидации черновика")
		return
	}

	writeJSON(w, http.StatusOK, generated.ConsolidateResponse{
		Draft:      result.Draft,
		BaseSource: result.BaseSource,
	})
}
