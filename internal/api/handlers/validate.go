// validate.go — HTTP handler проверки полноты секции.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/cedo-platform/draft-keeper/internal/api/errors"
	"github.com/cedo-platform/draft-keeper/internal/api/generated"
	"github.com/cedo-platform/draft-keeper/internal/validate"
)

// ValidateHandler — обработчик endpoint валидации.
type ValidateHandler struct {
	validator *validate.Validator
}

// NewValidateHandler создаёт обработчик валидации.
func NewValidateHandler(validator *validate.Validator) *ValidateHandler {
	return &ValidateHandler{validator: validator}
}

// ValidateSection обрабатывает POST /api/v1/validate/{sectionName}.
// Проверка — чистая функция над переданными данными, хранилище
// не затрагивается.
func (h *ValidateHandler) ValidateSection(w http.ResponseWriter, r *http.Request, sectionName generated.SectionName) {
	var req generated.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}
	if req.Data == nil {
		apierrors.ValidationError(w, "Поле 'data' обязательно")
		return
	}

	result, ok := h.validator.ByName(sectionName, req.Data)
	if !ok {
		apierrors.NotFound(w, fmt.Sprintf("Секция %s не зарегистрирована", sectionName))
		return
	}

	writeJSON(w, http.StatusOK, generated.ValidationResult{
		IsValid:          result.IsValid,
		MissingFields:    result.MissingFields,
		ValidationErrors: result.ValidationErrors,
		HasData:          result.HasData,
	})
}
