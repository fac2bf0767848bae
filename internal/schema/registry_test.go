package schema

import (
	"testing"
)

// TestDefault_Sections проверяет состав реестра.
func TestDefault_Sections(t *testing.T) {
	r := Default()

	sections := r.Sections()
	expected := []string{"organization", "schoolEvent", "reporting"}
	if len(sections) != len(expected) {
		t.Fatalf("ожидалось %d секций, получено %d", len(expected), len(sections))
	}
	for i, name := range expected {
		if sections[i] != name {
			t.Errorf("секция %d: ожидалось %q, получено %q", i, name, sections[i])
		}
	}
}

// TestDefault_OrganizationSchema проверяет схему базовой секции.
func TestDefault_OrganizationSchema(t *testing.T) {
	r := Default()

	s, ok := r.Section("organization")
	if !ok {
		t.Fatal("секция organization должна присутствовать в реестре")
	}

	if s.CurrentKey != "cedoDraft_organization" {
		t.Errorf("ожидался актуальный ключ cedoDraft_organization, получен %q", s.CurrentKey)
	}
	if s.SessionKey != "cedoSession_organization" {
		t.Errorf("ожидался сессионный ключ cedoSession_organization, получен %q", s.SessionKey)
	}

	// Порядок legacy ключей — контракт восстановления
	expectedLegacy := []string{"eventProposalFormData", "proposalFormData", "cedoFormData"}
	if len(s.LegacyKeys) != len(expectedLegacy) {
		t.Fatalf("ожидалось %d legacy ключей, получено %d", len(expectedLegacy), len(s.LegacyKeys))
	}
	for i, key := range expectedLegacy {
		if s.LegacyKeys[i] != key {
			t.Errorf("legacy ключ %d: ожидалось %q, получено %q", i, key, s.LegacyKeys[i])
		}
	}

	expectedRequired := []string{"organizationName", "contactEmail", "contactName", "organizationType"}
	if len(s.RequiredFields) != len(expectedRequired) {
		t.Fatalf("ожидалось %d обязательных полей, получено %d", len(expectedRequired), len(s.RequiredFields))
	}
	for i, f := range expectedRequired {
		if s.RequiredFields[i] != f {
			t.Errorf("обязательное поле %d: ожидалось %q, получено %q", i, f, s.RequiredFields[i])
		}
	}

	if len(s.EmailFields) != 1 || s.EmailFields[0] != "contactEmail" {
		t.Errorf("ожидалось email-поле contactEmail, получено %v", s.EmailFields)
	}
}

// TestSection_Unknown проверяет запрос неизвестной секции.
func TestSection_Unknown(t *testing.T) {
	r := Default()

	if _, ok := r.Section("unknown"); ok {
		t.Error("неизвестная секция не должна находиться в реестре")
	}
}

// TestBaseSection проверяет, что базовая секция есть в реестре.
func TestBaseSection(t *testing.T) {
	r := Default()

	if _, ok := r.Section(BaseSection); !ok {
		t.Errorf("базовая секция %q должна присутствовать в реестре", BaseSection)
	}
}

// TestIsFormDataKey проверяет классификацию ключей данных формы.
func TestIsFormDataKey(t *testing.T) {
	r := Default()

	tests := []struct {
		key      string
		expected bool
	}{
		{"cedoDraft_organization", true},
		{"cedoDraft_schoolEvent", true},
		{"cedoSession_reporting", true},
		{"eventProposalFormData", true},
		{"proposalFormData", true},
		{"accomplishmentReportData", true},
		{"fileMetadata_report.pdf", false},
		{"eventProposalBackup", false},
		{"randomKey", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.IsFormDataKey(tt.key); got != tt.expected {
				t.Errorf("IsFormDataKey(%q): ожидалось %v, получено %v", tt.key, tt.expected, got)
			}
		})
	}
}

// TestIsFileDataKey проверяет классификацию ключей метаданных файлов.
func TestIsFileDataKey(t *testing.T) {
	r := Default()

	if !r.IsFileDataKey("fileMetadata_report.pdf") {
		t.Error("ключ с префиксом fileMetadata_ должен классифицироваться как файловый")
	}
	if r.IsFileDataKey("cedoDraft_organization") {
		t.Error("ключ секции не должен классифицироваться как файловый")
	}
}

// TestIsCleanupPriority проверяет приоритет очистки при исчерпании квоты.
func TestIsCleanupPriority(t *testing.T) {
	r := Default()

	tests := []struct {
		key      string
		expected bool
	}{
		{"eventProposalFormData", true},
		{"cedoDraft_organization", true},
		{"fileMetadata_photo.jpg", true},
		// Бэкап никогда не чистится
		{BackupKey, false},
		{"unrelatedKey", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.IsCleanupPriority(tt.key); got != tt.expected {
				t.Errorf("IsCleanupPriority(%q): ожидалось %v, получено %v", tt.key, tt.expected, got)
			}
		})
	}
}
