// index.go — in-memory индекс записей постоянного хранилища.
// Строится сканированием директории при старте, далее поддерживается
// синхронно с мутациями. Источник истины для учёта квоты и перечисления
// ключей без обращения к диску.
package diskstore

import "sync"

// indexEntry — сведения об одной записи на диске.
type indexEntry struct {
	// FileName — имя файла записи в dataDir
	FileName string
	// Size — размер файла записи в байтах
	Size int64
}

// index — потокобезопасный индекс ключ → indexEntry.
type index struct {
	mu      sync.RWMutex
	entries map[string]indexEntry
	// totalSize — суммарный размер всех записей в байтах
	totalSize int64
}

// newIndex создаёт пустой индекс.
func newIndex() *index {
	return &index{entries: make(map[string]indexEntry)}
}

// get возвращает запись индекса по ключу.
func (ix *index) get(key string) (indexEntry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	e, ok := ix.entries[key]
	return e, ok
}

// put добавляет или заменяет запись индекса, поддерживая totalSize.
func (ix *index) put(key string, e indexEntry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.entries[key]; ok {
		ix.totalSize -= old.Size
	}
	ix.entries[key] = e
	ix.totalSize += e.Size
}

// remove удаляет запись индекса. Отсутствующий ключ — no-op.
func (ix *index) remove(key string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.entries[key]; ok {
		ix.totalSize -= old.Size
		delete(ix.entries, key)
	}
}

// keys возвращает копию списка ключей.
func (ix *index) keys() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]string, 0, len(ix.entries))
	for k := range ix.entries {
		out = append(out, k)
	}
	return out
}

// count возвращает количество записей.
func (ix *index) count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.entries)
}

// total возвращает суммарный размер записей в байтах.
func (ix *index) total() int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.totalSize
}

// reset очищает индекс.
func (ix *index) reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.entries = make(map[string]indexEntry)
	ix.totalSize = 0
}
