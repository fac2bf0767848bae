// Пакет schema — версионированный реестр схем секций черновика.
// Единственный источник истины для пространства имён ключей хранилища:
// актуальный ключ секции, упорядоченный список исторических (legacy)
// ключей, сессионный ключ, обязательные поля. Порядок legacy ключей —
// контракт восстановления: более ранний ключ выигрывает, если валидные
// данные есть в нескольких. Изменение пространства имён — breaking
// change для порядка восстановления.
package schema

import (
	"slices"
	"strings"
)

// RegistryVersion — версия реестра схем.
const RegistryVersion = "2"

// Зарезервированные элементы пространства имён ключей.
const (
	// BackupKey — ключ полного бэкапа черновика
	BackupKey = "eventProposalBackup"

	// CurrentKeyPrefix — префикс актуальных ключей секций
	CurrentKeyPrefix = "cedoDraft_"
	// SessionKeyPrefix — префикс сессионных ключей секций
	SessionKeyPrefix = "cedoSession_"
	// FileDataPrefix — префикс ключей метаданных файлов
	FileDataPrefix = "fileMetadata_"
)

// BaseSection — базовая секция: её полнота обязательна для
// консолидации черновика.
const BaseSection = "organization"

// SectionSchema — схема одной секции черновика.
type SectionSchema struct {
	// Name — имя секции
	Name string
	// CurrentKey — актуальный ключ автосохранения
	CurrentKey string
	// LegacyKeys — исторические ключи, в порядке приоритета восстановления
	LegacyKeys []string
	// SessionKey — ключ в сессионном хранилище
	SessionKey string
	// RequiredFields — обязательные поля секции
	RequiredFields []string
	// EmailFields — поля с форматом email (подмножество RequiredFields)
	EmailFields []string
}

// IsEmailField сообщает, требует ли поле проверки формата email.
func (s SectionSchema) IsEmailField(field string) bool {
	return slices.Contains(s.EmailFields, field)
}

// Registry — реестр схем секций.
type Registry struct {
	sections map[string]SectionSchema
	order    []string
}

// Default возвращает реестр секций CEDO.
// Содержимое фиксировано: ключи и их порядок — контракт восстановления.
func Default() *Registry {
	r := &Registry{sections: make(map[string]SectionSchema)}

	r.add(SectionSchema{
		Name:       "organization",
		CurrentKey: "cedoDraft_organization",
		LegacyKeys: []string{
			"eventProposalFormData",
			"proposalFormData",
			"cedoFormData",
		},
		SessionKey:     "cedoSession_organization",
		RequiredFields: []string{"organizationName", "contactEmail", "contactName", "organizationType"},
		EmailFields:    []string{"contactEmail"},
	})

	r.add(SectionSchema{
		Name:       "schoolEvent",
		CurrentKey: "cedoDraft_schoolEvent",
		LegacyKeys: []string{
			"schoolEventFormData",
			"eventDetailsFormData",
		},
		SessionKey:     "cedoSession_schoolEvent",
		RequiredFields: []string{"eventName", "venue", "startDate", "endDate"},
	})

	r.add(SectionSchema{
		Name:       "reporting",
		CurrentKey: "cedoDraft_reporting",
		LegacyKeys: []string{
			"reportingFormData",
			"accomplishmentReportData",
		},
		SessionKey:     "cedoSession_reporting",
		RequiredFields: []string{"eventStatus", "accomplishmentReport"},
	})

	return r
}

// add регистрирует схему секции.
func (r *Registry) add(s SectionSchema) {
	r.sections[s.Name] = s
	r.order = append(r.order, s.Name)
}

// Section возвращает схему секции по имени.
func (r *Registry) Section(name string) (SectionSchema, bool) {
	s, ok := r.sections[name]
	return s, ok
}

// Sections возвращает имена секций в порядке регистрации.
func (r *Registry) Sections() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IsFormDataKey сообщает, относится ли ключ к данным секций формы:
// актуальные и сессионные ключи (по префиксу) либо любой legacy ключ.
func (r *Registry) IsFormDataKey(key string) bool {
	if strings.HasPrefix(key, CurrentKeyPrefix) || strings.HasPrefix(key, SessionKeyPrefix) {
		return true
	}
	for _, s := range r.sections {
		for _, legacy := range s.LegacyKeys {
			if key == legacy {
				return true
			}
		}
	}
	return false
}

// IsFileDataKey сообщает, относится ли ключ к метаданным файлов.
func (r *Registry) IsFileDataKey(key string) bool {
	return strings.HasPrefix(key, FileDataPrefix)
}

// IsCleanupPriority сообщает, подлежит ли ключ приоритетной очистке
// при исчерпании квоты: данные секций и метаданные файлов чистятся
// первыми, зарезервированный бэкап — никогда.
func (r *Registry) IsCleanupPriority(key string) bool {
	if key == BackupKey {
		return false
	}
	return r.IsFormDataKey(key) || r.IsFileDataKey(key)
}
