// Пакет wal — файловый Write-Ahead Log для атомарности мутаций
// постоянного хранилища draft-keeper.
// Каждая транзакция — отдельный файл {tx_id}.wal.json в DK_WAL_DIR.
package wal

import (
	"time"
)

// OperationType — тип операции, записываемой в WAL.
type OperationType string

const (
	// OpRecordSet — запись (создание или перезапись) записи по ключу
	OpRecordSet OperationType = "record_set"
	// OpRecordRemove — удаление записи по ключу
	OpRecordRemove OperationType = "record_remove"
	// OpStoreClear — полная очистка хранилища
	OpStoreClear OperationType = "store_clear"
)

// TransactionStatus — статус транзакции WAL.
type TransactionStatus string

const (
	// StatusPending — транзакция начата, мутация в процессе
	StatusPending TransactionStatus = "pending"
	// StatusCommitted — транзакция успешно завершена
	StatusCommitted TransactionStatus = "committed"
	// StatusRolledBack — транзакция отменена (ошибка или откат при старте)
	StatusRolledBack TransactionStatus = "rolled_back"
)

// Entry — запись WAL. Хранится как JSON-файл {tx_id}.wal.json.
type Entry struct {
	// TransactionID — уникальный идентификатор транзакции (UUID v4)
	TransactionID string `json:"transaction_id"`

	// Operation — тип операции
	Operation OperationType `json:"operation"`

	// Status — текущий статус транзакции
	Status TransactionStatus `json:"status"`

	// Key — ключ хранилища, над которым выполняется мутация.
	// Пустой для store_clear.
	Key string `json:"key"`

	// StartedAt — время начала транзакции (UTC)
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения транзакции (UTC).
	// nil для pending транзакций.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// walFileName возвращает имя файла WAL для данной транзакции.
func walFileName(txID string) string {
	return txID + ".wal.json"
}
