// Пакет model — доменные модели draft-keeper.
package model

import (
	"encoding/json"
	"time"
)

// RecordVersion — версия формата конверта StorageRecord.
const RecordVersion = "1.0"

// StorageRecord — конверт хранимого значения. Создаётся исключительно
// движком хранения (storage.Engine), никогда — вызывающим кодом.
// Инвариант: Expires == nil, либо *Expires > Timestamp.
type StorageRecord struct {
	// Value — сериализованное значение (произвольный JSON)
	Value json.RawMessage `json:"value"`

	// Timestamp — время записи, epoch в миллисекундах (UTC)
	Timestamp int64 `json:"timestamp"`

	// Expires — абсолютное время истечения, epoch в миллисекундах.
	// nil — запись бессрочная.
	Expires *int64 `json:"expires"`

	// Version — версия формата конверта
	Version string `json:"version"`
}

// IsExpired возвращает true, если срок жизни записи истёк к моменту now.
// Бессрочные записи (Expires == nil) не истекают.
func (r *StorageRecord) IsExpired(now time.Time) bool {
	if r.Expires == nil {
		return false
	}
	return now.UnixMilli() >= *r.Expires
}

// Age возвращает возраст записи относительно now.
func (r *StorageRecord) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(r.Timestamp))
}

// FileDescriptor — метаданные файла внутри значения секции.
// Инвариант: если сериализованный размер дескриптора превысил порог
// компрессии, DataURL отсутствует, Compressed == true, HasData == true —
// метаданные сохранены, payload необратимо отброшен ради квоты.
type FileDescriptor struct {
	// Name — оригинальное имя файла
	Name string `json:"name"`

	// Size — размер файла в байтах
	Size int64 `json:"size"`

	// Type — MIME-тип
	Type string `json:"type"`

	// DataURL — содержимое файла в виде data URL (base64).
	// Пустое после компрессии.
	DataURL string `json:"dataUrl,omitempty"`

	// HasData — у файла было (или есть) содержимое
	HasData bool `json:"hasData"`

	// Compressed — payload отброшен, остались только метаданные
	Compressed bool `json:"compressed"`
}

// StorageInfo — диагностика состояния хранилища.
// Возвращается Engine.Info и публикуется в GET /api/v1/info.
type StorageInfo struct {
	// TotalKeys — количество ключей в хранилище
	TotalKeys int `json:"totalKeys"`

	// TotalSize — суммарный размер сериализованных записей в байтах
	TotalSize int64 `json:"totalSize"`

	// PercentageUsed — занятая доля квоты, 0-100
	PercentageUsed float64 `json:"percentageUsed"`

	// MaxSize — сконфигурированная квота в байтах
	MaxSize int64 `json:"maxSize"`

	// AvailableSpace — остаток квоты в байтах
	AvailableSpace int64 `json:"availableSpace"`

	// IsHealthy — занято менее порога (80%)
	IsHealthy bool `json:"isHealthy"`

	// FormDataKeys — количество ключей с данными секций формы
	FormDataKeys int `json:"formDataKeys"`

	// FileDataKeys — количество ключей с метаданными файлов
	FileDataKeys int `json:"fileDataKeys"`
}
