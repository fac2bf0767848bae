// errors.go — типизированные ошибки уровня хранилища.
// Ошибки ожидаемых отказов никогда не пробрасываются наружу как panic
// или необработанный error: движок преобразует их в результат операции
// с кодом типа (QuotaExceededError, SecurityError и т.д.).
package storage

import "errors"

// Сентинельные ошибки бэкендов хранения.
var (
	// ErrQuotaExceeded — запись превысила бы квоту хранилища.
	// Восстановимая ошибка: движок выполняет cleanup и повторяет запись.
	ErrQuotaExceeded = errors.New("квота хранилища исчерпана")

	// ErrSecurity — доступ к хранилищу заблокирован (права ФС,
	// read-only файловая система). Не повторяется.
	ErrSecurity = errors.New("доступ к хранилищу заблокирован")

	// ErrKeyNotFound — ключ отсутствует в хранилище.
	ErrKeyNotFound = errors.New("ключ не найден")

	// ErrUnsupported — бэкенд хранения не сконфигурирован.
	ErrUnsupported = errors.New("хранилище не поддерживается")
)

// Коды типов ошибок в результатах операций — контракт API.
const (
	// TypeQuotaExceeded — квота исчерпана даже после cleanup и retry
	TypeQuotaExceeded = "QuotaExceededError"
	// TypeSecurity — доступ к хранилищу заблокирован
	TypeSecurity = "SecurityError"
	// TypeSerialization — значение не сериализуется в JSON
	TypeSerialization = "SerializationError"
	// TypeUnsupported — бэкенд отсутствует
	TypeUnsupported = "StorageUnsupported"
)

// errorType сопоставляет ошибку бэкенда коду типа для результата.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return TypeQuotaExceeded
	case errors.Is(err, ErrSecurity):
		return TypeSecurity
	case errors.Is(err, ErrUnsupported):
		return TypeUnsupported
	default:
		return ""
	}
}
