package validate

import (
	"reflect"
	"testing"

	"github.com/cedo-platform/draft-keeper/internal/schema"
)

// TestSection_OnlyName проверяет, что при заполненном одном поле
// остальные обязательные поля перечисляются в порядке схемы.
func TestSection_OnlyName(t *testing.T) {
	v := New(schema.Default())

	result, ok := v.ByName("organization", map[string]any{"organizationName": "X"})
	if !ok {
		t.Fatal("секция organization должна быть зарегистрирована")
	}

	if result.IsValid {
		t.Error("результат не должен быть валидным")
	}
	want := []string{"contactEmail", "contactName", "organizationType"}
	if !reflect.DeepEqual(result.MissingFields, want) {
		t.Errorf("ожидалось %v, получено %v", want, result.MissingFields)
	}
	if !result.HasData {
		t.Error("hasData должен быть true: одно поле заполнено")
	}
}

// TestSection_Complete проверяет валидный набор данных.
func TestSection_Complete(t *testing.T) {
	v := New(schema.Default())

	result, _ := v.ByName("organization", map[string]any{
		"organizationName": "Test Organization",
		"contactEmail":     "test@example.com",
		"contactName":      "John Doe",
		"organizationType": "school-based",
	})

	if !result.IsValid {
		t.Errorf("ожидался валидный результат: missing=%v errors=%v",
			result.MissingFields, result.ValidationErrors)
	}
	if len(result.MissingFields) != 0 {
		t.Errorf("не должно быть отсутствующих полей: %v", result.MissingFields)
	}
	if !result.HasData {
		t.Error("hasData должен быть true")
	}
}

// TestSection_EmptyValues проверяет, что nil и строки из пробелов
// считаются отсутствующими значениями.
func TestSection_EmptyValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"nil", nil},
		{"пустая строка", ""},
		{"пробелы", "   "},
		{"табуляция и перевод строки", "\t\n"},
	}

	v := New(schema.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := v.ByName("organization", map[string]any{
				"organizationName": tt.value,
				"contactEmail":     "test@example.com",
				"contactName":      "John Doe",
				"organizationType": "school-based",
			})
			if result.IsValid {
				t.Error("результат не должен быть валидным")
			}
			want := []string{"organizationName"}
			if !reflect.DeepEqual(result.MissingFields, want) {
				t.Errorf("ожидалось %v, получено %v", want, result.MissingFields)
			}
		})
	}
}

// TestSection_MalformedEmail проверяет, что некорректный email
// попадает и в validationErrors, и в missingFields.
func TestSection_MalformedEmail(t *testing.T) {
	tests := []struct {
		name  string
		email any
	}{
		{"без собаки", "not-an-email"},
		{"без домена", "user@"},
		{"без точки в домене", "user@host"},
		{"с пробелом", "user name@example.com"},
		{"не строка", float64(42)},
	}

	v := New(schema.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := v.ByName("organization", map[string]any{
				"organizationName": "Test Organization",
				"contactEmail":     tt.email,
				"contactName":      "John Doe",
				"organizationType": "school-based",
			})
			if result.IsValid {
				t.Error("результат не должен быть валидным")
			}
			if _, ok := result.ValidationErrors["contactEmail"]; !ok {
				t.Error("некорректный email должен попасть в validationErrors")
			}
			want := []string{"contactEmail"}
			if !reflect.DeepEqual(result.MissingFields, want) {
				t.Errorf("некорректный email должен попасть в missingFields: %v", result.MissingFields)
			}
			if !result.HasData {
				t.Error("hasData не зависит от валидности")
			}
		})
	}
}

// TestSection_AbsentEmail проверяет, что отсутствующий email — только
// отсутствующее поле, без ошибки формата.
func TestSection_AbsentEmail(t *testing.T) {
	v := New(schema.Default())

	result, _ := v.ByName("organization", map[string]any{
		"organizationName": "Test Organization",
		"contactName":      "John Doe",
		"organizationType": "school-based",
	})

	if result.IsValid {
		t.Error("результат не должен быть валидным")
	}
	if len(result.ValidationErrors) != 0 {
		t.Errorf("отсутствующее поле не даёт ошибку формата: %v", result.ValidationErrors)
	}
	want := []string{"contactEmail"}
	if !reflect.DeepEqual(result.MissingFields, want) {
		t.Errorf("ожидалось %v, получено %v", want, result.MissingFields)
	}
}

// TestSection_EmptyData проверяет пустые данные: все поля отсутствуют,
// hasData=false.
func TestSection_EmptyData(t *testing.T) {
	v := New(schema.Default())

	for _, data := range []map[string]any{nil, {}} {
		result, _ := v.ByName("organization", data)
		if result.IsValid {
			t.Error("пустые данные не должны быть валидными")
		}
		if result.HasData {
			t.Error("hasData должен быть false для пустых данных")
		}
		sec, _ := schema.Default().Section("organization")
		if !reflect.DeepEqual(result.MissingFields, sec.RequiredFields) {
			t.Errorf("должны отсутствовать все обязательные поля: %v", result.MissingFields)
		}
	}
}

// TestSection_ExtraFieldsIgnored проверяет, что лишние поля не мешают
// валидности, но учитываются в hasData.
func TestSection_ExtraFieldsIgnored(t *testing.T) {
	v := New(schema.Default())

	result, _ := v.ByName("organization", map[string]any{
		"organizationName": "Test Organization",
		"contactEmail":     "test@example.com",
		"contactName":      "John Doe",
		"organizationType": "school-based",
		"notes":            "произвольное поле",
	})
	if !result.IsValid {
		t.Errorf("лишние поля не должны мешать валидности: %v", result.MissingFields)
	}

	// Данные только из лишних полей: невалидно, но hasData=true
	result, _ = v.ByName("organization", map[string]any{"notes": "черновик"})
	if result.IsValid {
		t.Error("обязательные поля отсутствуют")
	}
	if !result.HasData {
		t.Error("hasData должен учитывать любые непустые поля")
	}
}

// TestSection_MissingSubset проверяет полноту: для любого подмножества
// пропущенных полей missingFields содержит ровно его.
func TestSection_MissingSubset(t *testing.T) {
	full := map[string]any{
		"organizationName": "Test Organization",
		"contactEmail":     "test@example.com",
		"contactName":      "John Doe",
		"organizationType": "school-based",
	}

	v := New(schema.Default())
	sec, _ := schema.Default().Section("organization")

	// Перебор всех подмножеств обязательных полей битовой маской
	n := len(sec.RequiredFields)
	for mask := range 1 << n {
		data := make(map[string]any)
		var omitted []string
		for i, field := range sec.RequiredFields {
			if mask&(1<<i) != 0 {
				omitted = append(omitted, field)
				continue
			}
			data[field] = full[field]
		}

		result := v.Section(sec, data)
		want := omitted
		if want == nil {
			want = []string{}
		}
		if !reflect.DeepEqual(result.MissingFields, want) {
			t.Errorf("маска %04b: ожидалось %v, получено %v", mask, want, result.MissingFields)
		}
		if result.IsValid != (len(omitted) == 0) {
			t.Errorf("маска %04b: isValid=%v при %d пропущенных", mask, result.IsValid, len(omitted))
		}
	}
}

// TestByName_UnknownSection проверяет отказ для незарегистрированной секции.
func TestByName_UnknownSection(t *testing.T) {
	v := New(schema.Default())

	if _, ok := v.ByName("unknown", map[string]any{"a": 1}); ok {
		t.Error("незарегистрированная секция должна давать false")
	}
}

// TestSection_OtherSections проверяет обязательные поля остальных секций.
func TestSection_OtherSections(t *testing.T) {
	tests := []struct {
		section string
		data    map[string]any
		valid   bool
		missing []string
	}{
		{
			section: "schoolEvent",
			data: map[string]any{
				"eventName": "Science Fair",
				"venue":     "Main Hall",
				"startDate": "2026-09-01",
				"endDate":   "2026-09-02",
			},
			valid:   true,
			missing: []string{},
		},
		{
			section: "schoolEvent",
			data:    map[string]any{"eventName": "Science Fair"},
			valid:   false,
			missing: []string{"venue", "startDate", "endDate"},
		},
		{
			section: "reporting",
			data:    map[string]any{"eventStatus": "completed"},
			valid:   false,
			missing: []string{"accomplishmentReport"},
		},
	}

	v := New(schema.Default())

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			result, ok := v.ByName(tt.section, tt.data)
			if !ok {
				t.Fatalf("секция %s должна быть зарегистрирована", tt.section)
			}
			if result.IsValid != tt.valid {
				t.Errorf("isValid: ожидалось %v, получено %v", tt.valid, result.IsValid)
			}
			if !reflect.DeepEqual(result.MissingFields, tt.missing) {
				t.Errorf("ожидалось %v, получено %v", tt.missing, result.MissingFields)
			}
		})
	}
}
