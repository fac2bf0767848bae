// Пакет memstore — сессионный in-memory бэкенд хранения.
// Живёт в пределах жизни процесса draft-keeper: аналог сессионного
// хранилища браузера. Ограничен количеством записей — при переполнении
// возвращает ошибку квоты, как и постоянное хранилище.
package memstore

import (
	"sync"

	"github.com/cedo-platform/draft-keeper/internal/storage"
)

// Store — потокобезопасное in-memory key-value хранилище.
type Store struct {
	// mu защищает data
	mu sync.RWMutex
	// data — записи по ключам
	data map[string][]byte
	// maxEntries — максимальное количество записей (0 — без лимита)
	maxEntries int
}

// New создаёт пустое хранилище с лимитом записей.
func New(maxEntries int) *Store {
	return &Store{
		data:       make(map[string][]byte),
		maxEntries: maxEntries,
	}
}

// Get возвращает копию записи по ключу.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}

	// Копия — защита от мутаций со стороны вызывающего кода
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set сохраняет запись под ключом. Перезапись существующего ключа
// не увеличивает количество записей и лимит не проверяет.
func (s *Store) Set(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists {
		if s.maxEntries > 0 && len(s.data) >= s.maxEntries {
			return storage.ErrQuotaExceeded
		}
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	s.data[key] = stored
	return nil
}

// Remove удаляет ключ. Отсутствующий ключ — no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Keys возвращает список всех ключей.
func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len возвращает количество записей.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}
