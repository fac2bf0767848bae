// Пакет diskstore — постоянный дисковый бэкенд хранения draft-keeper.
// Каждая запись — отдельный JSON-файл {sanitized-key}_{crc32}.rec.json
// в DK_DATA_DIR. Запись атомарна: temp файл → fsync → rename. Квота
// учитывается по in-memory индексу, который строится сканированием
// директории при старте.
package diskstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/cedo-platform/draft-keeper/internal/storage"
	"github.com/cedo-platform/draft-keeper/internal/storage/wal"
)

// RecordSuffix — суффикс файлов записей.
const RecordSuffix = ".rec.json"

// fileEntry — дисковый конверт записи: ключ хранится рядом с данными,
// чтобы сканирование директории восстанавливало индекс без внешних
// метаданных.
type fileEntry struct {
	// Key — ключ хранилища
	Key string `json:"key"`
	// Record — сериализованная запись движка (непрозрачна для diskstore)
	Record json.RawMessage `json:"record"`
}

// Store — дисковое key-value хранилище с учётом квоты.
type Store struct {
	// dataDir — директория данных (DK_DATA_DIR)
	dataDir string
	// maxCapacity — квота хранилища в байтах
	maxCapacity int64
	// wlog — WAL мутаций (nil — без журналирования)
	wlog *wal.WAL
	// idx — индекс записей
	idx *index
	// mu сериализует мутации: проверка квоты и запись должны быть
	// атомарны относительно параллельных писателей
	mu sync.Mutex
	// logger — логгер
	logger *slog.Logger
}

// New создаёт дисковое хранилище: готовит директорию, убирает следы
// прерванных записей (*.tmp) и строит индекс сканированием.
// Недоступность директории на запись — ErrSecurity.
func New(dataDir string, maxCapacity int64, wlog *wal.WAL, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dataDir, mapFSError(err))
	}

	// Проверяем доступность на запись
	testFile := filepath.Join(dataDir, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o640); err != nil {
		return nil, fmt.Errorf("директория данных %s недоступна для записи: %w", dataDir, mapFSError(err))
	}
	os.Remove(testFile)

	s := &Store{
		dataDir:     dataDir,
		maxCapacity: maxCapacity,
		wlog:        wlog,
		idx:         newIndex(),
		logger:      logger.With(slog.String("component", "diskstore")),
	}

	if err := s.scan(); err != nil {
		return nil, err
	}

	return s, nil
}

// scan строит индекс по содержимому dataDir: удаляет брошенные temp
// файлы, читает конверты записей, пропускает нечитаемые файлы с warn.
func (s *Store) scan() error {
	s.idx.reset()

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return fmt.Errorf("не удалось сканировать директорию данных: %w", mapFSError(err))
	}

	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		name := de.Name()

		// Следы прерванных атомарных записей
		if strings.HasSuffix(name, ".tmp") {
			if err := os.Remove(filepath.Join(s.dataDir, name)); err != nil {
				s.logger.Warn("Не удалось удалить временный файл",
					slog.String("file", name),
					slog.String("error", err.Error()),
				)
			} else {
				s.logger.Info("Удалён временный файл прерванной записи",
					slog.String("file", name),
				)
			}
			continue
		}

		if !strings.HasSuffix(name, RecordSuffix) {
			continue
		}

		path := filepath.Join(s.dataDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Не удалось прочитать файл записи при сканировании",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			continue
		}

		var fe fileEntry
		if err := json.Unmarshal(data, &fe); err != nil || fe.Key == "" {
			s.logger.Warn("Повреждённый файл записи пропущен при сканировании",
				slog.String("file", name),
			)
			continue
		}

		s.idx.put(fe.Key, indexEntry{FileName: name, Size: int64(len(data))})
	}

	s.logger.Info("Индекс хранилища построен",
		slog.Int("keys", s.idx.count()),
		slog.Int64("total_size", s.idx.total()),
	)

	return nil
}

// Get возвращает сериализованную запись по ключу.
func (s *Store) Get(key string) ([]byte, error) {
	e, ok := s.idx.get(key)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dataDir, e.FileName))
	if err != nil {
		if os.IsNotExist(err) {
			// Файл исчез из-под индекса — чиним индекс
			s.idx.remove(key)
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("ошибка чтения записи %s: %w", key, mapFSError(err))
	}

	var fe fileEntry
	if err := json.Unmarshal(data, &fe); err != nil {
		// Повреждённый конверт: отдаём сырые байты, движок обработает
		// их как SerializationError
		return data, nil
	}

	return fe.Record, nil
}

// Set сохраняет запись под ключом (перезапись). Запись, превышающая
// квоту хранилища, отклоняется с ErrQuotaExceeded. Мутация выполняется
// под WAL-транзакцией и атомарной записью файла.
func (s *Store) Set(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fe := fileEntry{Key: key, Record: data}
	payload, err := json.Marshal(&fe)
	if err != nil {
		return fmt.Errorf("ошибка сериализации конверта записи: %w", err)
	}

	// Проверка квоты: сумма после перезаписи не должна превысить лимит
	var oldSize int64
	if old, ok := s.idx.get(key); ok {
		oldSize = old.Size
	}
	if s.maxCapacity > 0 && s.idx.total()-oldSize+int64(len(payload)) > s.maxCapacity {
		return storage.ErrQuotaExceeded
	}

	tx, err := s.startTx(wal.OpRecordSet, key)
	if err != nil {
		return err
	}

	fileName := recordFileName(key)
	if err := s.writeAtomic(fileName, payload); err != nil {
		s.rollbackTx(tx)
		return err
	}

	s.idx.put(key, indexEntry{FileName: fileName, Size: int64(len(payload))})
	s.commitTx(tx)
	return nil
}

// Remove удаляет ключ. Отсутствующий ключ — no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.idx.get(key)
	if !ok {
		return nil
	}

	tx, err := s.startTx(wal.OpRecordRemove, key)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dataDir, e.FileName)); err != nil && !os.IsNotExist(err) {
		s.rollbackTx(tx)
		return fmt.Errorf("ошибка удаления записи %s: %w", key, mapFSError(err))
	}

	s.idx.remove(key)
	s.commitTx(tx)
	return nil
}

// Keys возвращает список всех ключей хранилища.
func (s *Store) Keys() ([]string, error) {
	return s.idx.keys(), nil
}

// Clear удаляет все записи хранилища.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.startTx(wal.OpStoreClear, "")
	if err != nil {
		return err
	}

	for _, key := range s.idx.keys() {
		e, ok := s.idx.get(key)
		if !ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dataDir, e.FileName)); err != nil && !os.IsNotExist(err) {
			s.rollbackTx(tx)
			return fmt.Errorf("ошибка очистки хранилища: %w", mapFSError(err))
		}
		s.idx.remove(key)
	}

	s.commitTx(tx)
	return nil
}

// Count возвращает количество записей.
func (s *Store) Count() int {
	return s.idx.count()
}

// TotalSize возвращает суммарный размер записей в байтах.
func (s *Store) TotalSize() int64 {
	return s.idx.total()
}

// MaxCapacity возвращает квоту хранилища в байтах.
func (s *Store) MaxCapacity() int64 {
	return s.maxCapacity
}

// DataDir возвращает путь к директории данных.
func (s *Store) DataDir() string {
	return s.dataDir
}

// writeAtomic записывает файл атомарно: temp → fsync → rename.
func (s *Store) writeAtomic(fileName string, data []byte) error {
	targetPath := filepath.Join(s.dataDir, fileName)
	tmpPath := targetPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", mapFSError(err))
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", mapFSError(err))
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", mapFSError(err))
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", mapFSError(err))
	}

	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", mapFSError(err))
	}

	return nil
}

// startTx начинает WAL-транзакцию (no-op при wlog == nil).
func (s *Store) startTx(op wal.OperationType, key string) (*wal.Entry, error) {
	if s.wlog == nil {
		return nil, nil
	}
	tx, err := s.wlog.StartTransaction(op, key)
	if err != nil {
		return nil, fmt.Errorf("не удалось начать WAL-транзакцию: %w", err)
	}
	return tx, nil
}

// commitTx коммитит WAL-транзакцию (no-op при tx == nil).
func (s *Store) commitTx(tx *wal.Entry) {
	if tx == nil {
		return
	}
	if err := s.wlog.Commit(tx.TransactionID); err != nil {
		s.logger.Warn("Не удалось закоммитить WAL-транзакцию",
			slog.String("tx_id", tx.TransactionID),
			slog.String("error", err.Error()),
		)
	}
}

// rollbackTx откатывает WAL-транзакцию (no-op при tx == nil).
func (s *Store) rollbackTx(tx *wal.Entry) {
	if tx == nil {
		return
	}
	if err := s.wlog.Rollback(tx.TransactionID); err != nil {
		s.logger.Warn("Не удалось откатить WAL-транзакцию",
			slog.String("tx_id", tx.TransactionID),
			slog.String("error", err.Error()),
		)
	}
}

// recordFileName генерирует детерминированное имя файла записи.
// Формат: {sanitized-key}_{crc32}.rec.json — читаемое имя плюс
// контрольная сумма исходного ключа против коллизий санитизации.
func recordFileName(key string) string {
	sum := crc32.ChecksumIEEE([]byte(key))
	return fmt.Sprintf("%s_%08x%s", sanitize(key), sum, RecordSuffix)
}

// sanitize убирает небезопасные символы из ключа для имени файла.
// Оставляет буквы, цифры, дефис, подчёркивание и кириллицу.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' ||
			(r >= 0x0400 && r <= 0x04FF) { // Кириллица
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "key"
	}
	out := result.String()
	if len(out) > 100 {
		out = out[:100]
	}
	return out
}

// mapFSError сопоставляет ошибки файловой системы доменным ошибкам
// хранилища: запреты доступа и read-only ФС — ErrSecurity.
func mapFSError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EROFS) {
		return fmt.Errorf("%w: %w", storage.ErrSecurity, err)
	}
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %w", storage.ErrQuotaExceeded, err)
	}
	return err
}
