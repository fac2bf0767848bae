// results.go — результаты валидации и восстановления.
package model

// Источники данных восстановления. Тег источника — контракт API:
// он фиксирует, какой именно кандидат прошёл валидацию.
const (
	// SourceCurrent — текущие данные вызывающего кода (или его in-memory копия)
	SourceCurrent = "current"
	// SourceLocalPrefix — префикс тега для ключей постоянного хранилища;
	// полный тег: "localStorage:<key>"
	SourceLocalPrefix = "localStorage:"
	// SourceSession — сессионное хранилище
	SourceSession = "sessionStorage"
	// SourceDraftAPI — удалённый draft API
	SourceDraftAPI = "draftAPI"
	// SourceNone — ни один кандидат не дал валидных данных
	SourceNone = "none"
)

// ValidationResult — результат проверки полноты секции.
// Формируется заново при каждом вызове, никогда не кэшируется.
type ValidationResult struct {
	// IsValid — все обязательные поля присутствуют и корректны
	IsValid bool `json:"isValid"`

	// MissingFields — отсутствующие (или некорректные) обязательные поля
	MissingFields []string `json:"missingFields"`

	// ValidationErrors — ошибки формата по полям (поле → сообщение)
	ValidationErrors map[string]string `json:"validationErrors"`

	// HasData — хотя бы одно поле входных данных непустое.
	// Не зависит от валидности: отличает «не заполняли» от «заполнили неверно».
	HasData bool `json:"hasData"`
}

// RecoveryResult — итог восстановления секции.
// Восстановление никогда не возвращает ошибку — только этот результат.
type RecoveryResult struct {
	// IsValid — найден кандидат с валидными данными
	IsValid bool `json:"isValid"`

	// Data — восстановленные данные секции (nil при неудаче)
	Data map[string]any `json:"data,omitempty"`

	// Source — тег кандидата, прошедшего валидацию
	Source string `json:"source"`

	// MissingFields — при неудаче: отсутствующие поля из последней
	// выполненной валидации
	MissingFields []string `json:"missingFields,omitempty"`
}
