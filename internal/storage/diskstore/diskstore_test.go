package diskstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cedo-platform/draft-keeper/internal/storage"
	"github.com/cedo-platform/draft-keeper/internal/storage/wal"
)

// testLogger возвращает логгер для тестов (вывод подавляется).
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// newTestStore создаёт хранилище в временной директории без WAL.
func newTestStore(t *testing.T, maxCapacity int64) *Store {
	t.Helper()
	s, err := New(t.TempDir(), maxCapacity, nil, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания хранилища: %v", err)
	}
	return s
}

// TestNew_CreatesDirectory проверяет создание директории данных.
func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	s, err := New(dir, 0, nil, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания хранилища: %v", err)
	}

	if s.DataDir() != dir {
		t.Errorf("ожидался путь %s, получен %s", dir, s.DataDir())
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("директория не создана: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("путь не является директорией")
	}
}

// TestNew_ReadOnlyDir проверяет ErrSecurity для недоступной директории.
func TestNew_ReadOnlyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	if err := os.MkdirAll(dir, 0o550); err != nil {
		t.Fatalf("не удалось создать директорию: %v", err)
	}

	_, err := New(dir, 0, nil, testLogger())
	if err == nil {
		t.Fatal("ожидалась ошибка для read-only директории")
	}
	if !errors.Is(err, storage.ErrSecurity) {
		t.Errorf("ожидалась ErrSecurity, получено %v", err)
	}
}

// TestSetGet проверяет запись и чтение записи.
func TestSetGet(t *testing.T) {
	s := newTestStore(t, 0)

	record := []byte(`{"value":{"a":1},"timestamp":1756100000000,"expires":null,"version":"1.0"}`)
	if err := s.Set("cedoDraft_organization", record); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	data, err := s.Get("cedoDraft_organization")
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if string(data) != string(record) {
		t.Errorf("ожидалось %s, получено %s", record, data)
	}
}

// TestGet_NotFound проверяет чтение отсутствующего ключа.
func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t, 0)

	_, err := s.Get("missing")
	if !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("ожидалась ErrKeyNotFound, получено %v", err)
	}
}

// TestSet_Overwrite проверяет перезапись ключа без роста количества записей.
func TestSet_Overwrite(t *testing.T) {
	s := newTestStore(t, 0)

	if err := s.Set("k", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	if err := s.Set("k", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("ошибка перезаписи: %v", err)
	}

	if s.Count() != 1 {
		t.Errorf("ожидалась 1 запись, получено %d", s.Count())
	}

	data, err := s.Get("k")
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("ожидалось новое значение, получено %s", data)
	}
}

// TestSet_QuotaExceeded проверяет отказ записи при превышении квоты.
func TestSet_QuotaExceeded(t *testing.T) {
	s := newTestStore(t, 300)

	if err := s.Set("small", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	big := []byte(`{"payload":"` + strings.Repeat("x", 400) + `"}`)
	err := s.Set("big", big)
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Errorf("ожидалась ErrQuotaExceeded, получено %v", err)
	}

	// Маленькая запись не пострадала
	if _, err := s.Get("small"); err != nil {
		t.Errorf("существующая запись должна быть читаема: %v", err)
	}
}

// TestRemove проверяет удаление ключа и освобождение квоты.
func TestRemove(t *testing.T) {
	s := newTestStore(t, 0)

	s.Set("k", []byte(`{"a":1}`))
	before := s.TotalSize()
	if before == 0 {
		t.Fatal("TotalSize должен учитывать запись")
	}

	if err := s.Remove("k"); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if _, err := s.Get("k"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Error("ключ должен отсутствовать после удаления")
	}
	if s.TotalSize() != 0 {
		t.Errorf("квота должна освободиться, занято %d", s.TotalSize())
	}

	// Повторное удаление — no-op
	if err := s.Remove("k"); err != nil {
		t.Errorf("удаление отсутствующего ключа не должно быть ошибкой: %v", err)
	}
}

// TestClear проверяет полную очистку хранилища.
func TestClear(t *testing.T) {
	s := newTestStore(t, 0)

	for i := range 5 {
		s.Set(fmt.Sprintf("key-%d", i), []byte(`{"n":1}`))
	}
	if s.Count() != 5 {
		t.Fatalf("ожидалось 5 записей, получено %d", s.Count())
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("ошибка очистки: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("ожидалось 0 записей после очистки, получено %d", s.Count())
	}
	if s.TotalSize() != 0 {
		t.Errorf("ожидался нулевой размер после очистки, получено %d", s.TotalSize())
	}
}

// TestScan_RebuildsIndex проверяет восстановление индекса при рестарте.
func TestScan_RebuildsIndex(t *testing.T) {
	dir := t.TempDir()

	s1, err := New(dir, 0, nil, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания хранилища: %v", err)
	}
	s1.Set("cedoDraft_organization", []byte(`{"org":true}`))
	s1.Set("eventProposalFormData", []byte(`{"legacy":true}`))

	// Новый экземпляр над той же директорией
	s2, err := New(dir, 0, nil, testLogger())
	if err != nil {
		t.Fatalf("ошибка пересоздания хранилища: %v", err)
	}

	if s2.Count() != 2 {
		t.Fatalf("ожидалось 2 записи после сканирования, получено %d", s2.Count())
	}

	data, err := s2.Get("eventProposalFormData")
	if err != nil {
		t.Fatalf("ошибка чтения после сканирования: %v", err)
	}
	if string(data) != `{"legacy":true}` {
		t.Errorf("ожидалось исходное значение, получено %s", data)
	}
}

// TestScan_RemovesTempFiles проверяет удаление *.tmp при старте.
func TestScan_RemovesTempFiles(t *testing.T) {
	dir := t.TempDir()

	tmpFile := filepath.Join(dir, "orphan"+RecordSuffix+".tmp")
	if err := os.WriteFile(tmpFile, []byte("partial"), 0o640); err != nil {
		t.Fatalf("не удалось создать temp файл: %v", err)
	}

	_, err := New(dir, 0, nil, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания хранилища: %v", err)
	}

	if _, err := os.Stat(tmpFile); !os.IsNotExist(err) {
		t.Error("temp файл должен быть удалён при сканировании")
	}
}

// TestScan_SkipsCorrupt проверяет пропуск повреждённых файлов при сканировании.
func TestScan_SkipsCorrupt(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "broken_deadbeef"+RecordSuffix)
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o640); err != nil {
		t.Fatalf("не удалось создать повреждённый файл: %v", err)
	}

	s, err := New(dir, 0, nil, testLogger())
	if err != nil {
		t.Fatalf("сканирование не должно падать на повреждённом файле: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("повреждённый файл не должен попасть в индекс, записей: %d", s.Count())
	}
}

// TestSet_Atomic проверяет отсутствие temp файлов после записи.
func TestSet_Atomic(t *testing.T) {
	s := newTestStore(t, 0)

	if err := s.Set("k-atomic", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	entries, err := os.ReadDir(s.DataDir())
	if err != nil {
		t.Fatalf("ошибка чтения директории: %v", err)
	}
	for _, de := range entries {
		if strings.HasSuffix(de.Name(), ".tmp") {
			t.Errorf("временный файл не должен остаться: %s", de.Name())
		}
	}
}

// TestSet_WithWAL проверяет, что мутации журналируются и коммитятся.
func TestSet_WithWAL(t *testing.T) {
	dir := t.TempDir()
	w, err := wal.New(filepath.Join(dir, "wal"), testLogger())
	if err != nil {
		t.Fatalf("ошибка создания WAL: %v", err)
	}

	s, err := New(filepath.Join(dir, "data"), 0, w, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания хранилища: %v", err)
	}

	if err := s.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	if err := s.Remove("k"); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}

	// Все транзакции должны быть завершены
	pending, err := w.RecoverPending()
	if err != nil {
		t.Fatalf("ошибка чтения WAL: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("ожидалось 0 pending транзакций, получено %d", len(pending))
	}
}

// TestRecordFileName проверяет детерминированность и безопасность имён файлов.
func TestRecordFileName(t *testing.T) {
	tests := []struct {
		key string
	}{
		{"cedoDraft_organization"},
		{"ключ-по-русски"},
		{"weird/../key with spaces"},
		{""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			name1 := recordFileName(tt.key)
			name2 := recordFileName(tt.key)
			if name1 != name2 {
				t.Errorf("имя должно быть детерминированным: %q != %q", name1, name2)
			}
			if strings.ContainsAny(name1, "/\\ ") {
				t.Errorf("имя содержит небезопасные символы: %q", name1)
			}
			if !strings.HasSuffix(name1, RecordSuffix) {
				t.Errorf("имя должно заканчиваться на %s: %q", RecordSuffix, name1)
			}
		})
	}

	// Разные ключи с одинаковой санитизацией не должны коллидировать
	if recordFileName("a/b") == recordFileName("a.b") {
		t.Error("ключи с одинаковой санитизацией должны давать разные имена")
	}
}

// TestConcurrentAccess проверяет потокобезопасность хранилища.
func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t, 0)

	const goroutines = 20
	var wg sync.WaitGroup

	wg.Add(goroutines)
	for i := range goroutines {
		go func(id int) {
			defer wg.Done()

			key := fmt.Sprintf("key-%d", id)
			if err := s.Set(key, []byte(`{"n":1}`)); err != nil {
				t.Errorf("ошибка записи %s: %v", key, err)
				return
			}
			if _, err := s.Get(key); err != nil {
				t.Errorf("ошибка чтения %s: %v", key, err)
			}
		}(i)
	}

	wg.Wait()

	if s.Count() != goroutines {
		t.Errorf("ожидалось %d записей, получено %d", goroutines, s.Count())
	}
}
