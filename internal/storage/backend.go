// backend.go — интерфейс бэкенда хранения.
package storage

// Backend — строковое key-value хранилище, внедряемое в Engine.
// Две реализации: diskstore (постоянное хранилище) и memstore
// (сессионное). Реализации обязаны быть потокобезопасными.
//
// Контракт ошибок: Set возвращает ErrQuotaExceeded при превышении
// квоты и ErrSecurity при блокировке доступа; Get возвращает
// ErrKeyNotFound для отсутствующего ключа; Remove отсутствующего
// ключа — не ошибка.
type Backend interface {
	// Get возвращает сериализованную запись по ключу.
	Get(key string) ([]byte, error)

	// Set сохраняет сериализованную запись под ключом (перезапись).
	Set(key string, data []byte) error

	// Remove удаляет ключ. Отсутствующий ключ — no-op.
	Remove(key string) error

	// Keys возвращает список всех ключей хранилища.
	Keys() ([]string, error)
}
