// Пакет validate — проверка данных секций черновика по реестру схем:
// обязательные поля и форматные правила.
package validate

import (
	"regexp"
	"strings"

	"github.com/cedo-platform/draft-keeper/internal/domain/model"
	"github.com/cedo-platform/draft-keeper/internal/schema"
)

// emailRx — прагматичная проверка формата email: непустая локальная
// часть, @, домен с точкой, без пробелов.
var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator проверяет данные секций по реестру схем.
type Validator struct {
	registry *schema.Registry
}

// New создаёт валидатор над реестром схем.
func New(registry *schema.Registry) *Validator {
	return &Validator{registry: registry}
}

// ByName проверяет данные секции по её имени.
// Возвращает false, если секция не зарегистрирована.
func (v *Validator) ByName(section string, data map[string]any) (model.ValidationResult, bool) {
	sec, ok := v.registry.Section(section)
	if !ok {
		return model.ValidationResult{}, false
	}
	return v.Section(sec, data), true
}

// Section проверяет данные секции. Обязательное поле считается
// отсутствующим, если его нет, оно nil или строка из одних пробелов.
// Некорректный email попадает и в validationErrors, и в missingFields:
// контракт поля не выполнен. hasData не зависит от валидности и
// отличает «ничего не заполнено» от «заполнено неверно».
// Результат строится заново при каждом вызове.
func (v *Validator) Section(sec schema.SectionSchema, data map[string]any) model.ValidationResult {
	result := model.ValidationResult{
		MissingFields:    make([]string, 0, len(sec.RequiredFields)),
		ValidationErrors: make(map[string]string),
	}

	for _, field := range sec.RequiredFields {
		raw, present := data[field]
		if !present || isEmpty(raw) {
			result.MissingFields = append(result.MissingFields, field)
			continue
		}
		if !sec.IsEmailField(field) {
			continue
		}
		str, ok := raw.(string)
		if !ok || !emailRx.MatchString(strings.TrimSpace(str)) {
			result.ValidationErrors[field] = "некорректный формат email"
			result.MissingFields = append(result.MissingFields, field)
		}
	}

	for _, raw := range data {
		if !isEmpty(raw) {
			result.HasData = true
			break
		}
	}

	result.IsValid = len(result.MissingFields) == 0 && len(result.ValidationErrors) == 0
	return result
}

// isEmpty: nil и строки из одних пробелов считаются пустым значением.
func isEmpty(raw any) bool {
	if raw == nil {
		return true
	}
	if str, ok := raw.(string); ok {
		return strings.TrimSpace(str) == ""
	}
	return false
}
