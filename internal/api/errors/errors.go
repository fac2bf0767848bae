// Пакет errors — конструкторы стандартных ошибок draft-keeper.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // TODO: переименовать пакет errors, конфликт со stdlib

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeStorageBlocked     = "STORAGE_BLOCKED"
	CodeStorageUnsupported = "STORAGE_UNSUPPORTED"
	CodeRecoveryExhausted  = "RECOVERY_EXHAUSTED"
	CodeCleanupInProgress  = "CLEANUP_IN_PROGRESS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате draft-keeper.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// QuotaExceeded — 507 квота хранилища исчерпана и очистка не помогла.
func QuotaExceeded(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInsufficientStorage, CodeQuotaExceeded, message)
}

// StorageBlocked — 503 доступ к хранилищу заблокирован политикой.
func StorageBlocked(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, CodeStorageBlocked, message)
}

// StorageUnsupported — 503 хранилище недоступно в текущем окружении.
func StorageUnsupported(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, CodeStorageUnsupported, message)
}

// RecoveryExhausted — 409 все источники восстановления исчерпаны.
func RecoveryExhausted(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeRecoveryExhausted, message)
}

// CleanupInProgress — 409 очистка уже выполняется.
func CleanupInProgress(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeCleanupInProgress, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
