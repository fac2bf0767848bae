package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/cedo-platform/draft-keeper/internal/domain/model"
	"github.com/cedo-platform/draft-keeper/internal/draftapi"
	"github.com/cedo-platform/draft-keeper/internal/schema"
	"github.com/cedo-platform/draft-keeper/internal/storage"
	"github.com/cedo-platform/draft-keeper/internal/storage/memstore"
	"github.com/cedo-platform/draft-keeper/internal/validate"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// validOrgData — полный валидный набор данных секции organization.
func validOrgData() map[string]any {
	return map[string]any{
		"organizationName": "Test Organization",
		"contactEmail":     "test@example.com",
		"contactName":      "John Doe",
		"organizationType": "school-based",
	}
}

// recoveryFixture — окружение для тестов восстановления.
type recoveryFixture struct {
	persistent *storage.Engine
	session    *storage.Engine
	svc        *RecoveryService
}

// newRecoveryFixture создаёт оркестратор с in-memory хранилищами.
// drafts может быть nil — удалённый кандидат недоступен.
func newRecoveryFixture(t *testing.T, drafts *draftapi.Client, cache *draftapi.Cache) *recoveryFixture {
	t.Helper()

	registry := schema.Default()
	logger := testLogger()
	persistent := storage.NewEngine(memstore.New(0), registry, storage.Options{Name: "persistent"}, logger)
	session := storage.NewEngine(memstore.New(0), registry, storage.Options{Name: "session"}, logger)

	svc := NewRecoveryService(persistent, session, registry, validate.New(registry), drafts, cache, time.Second, logger)
	return &recoveryFixture{persistent: persistent, session: session, svc: svc}
}

// setupMockDraftAPI создаёт mock Draft API и клиент к нему.
func setupMockDraftAPI(t *testing.T, handler http.HandlerFunc) *draftapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := draftapi.New(server.URL, "", time.Second, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return client
}

// TestRecoverSection_CurrentWins проверяет короткое замыкание на
// первом кандидате: валидные текущие данные выигрывают у всех.
func TestRecoverSection_CurrentWins(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)
	ctx := context.Background()

	// Валидные данные и в legacy ключе — не должны использоваться
	f.persistent.Set(ctx, "eventProposalFormData", map[string]any{
		"organizationName": "Legacy Org",
		"contactEmail":     "legacy@example.com",
		"contactName":      "Legacy Contact",
		"organizationType": "community-based",
	}, nil)

	result := f.svc.RecoverSection(ctx, "", "organization", validOrgData(), nil)

	if !result.IsValid {
		t.Fatalf("ожидалось успешное восстановление: %+v", result)
	}
	if result.Source != model.SourceCurrent {
		t.Errorf("ожидался источник current, получен %q", result.Source)
	}
	if result.Data["organizationName"] != "Test Organization" {
		t.Errorf("должны вернуться текущие данные, получено %v", result.Data["organizationName"])
	}
}

// TestRecoverSection_FallbackReportedAsCurrent проверяет, что валидная
// in-memory копия репортится с тегом current.
func TestRecoverSection_FallbackReportedAsCurrent(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)

	result := f.svc.RecoverSection(context.Background(), "", "organization",
		map[string]any{"organizationName": "Incomplete"}, validOrgData())

	if !result.IsValid {
		t.Fatalf("ожидалось успешное восстановление: %+v", result)
	}
	if result.Source != model.SourceCurrent {
		t.Errorf("ожидался источник current, получен %q", result.Source)
	}
	if result.Data["contactName"] != "John Doe" {
		t.Errorf("должны вернуться данные из копии, получено %v", result.Data["contactName"])
	}
}

// TestRecoverSection_LegacyKey проверяет восстановление из legacy
// ключа с точным тегом источника.
func TestRecoverSection_LegacyKey(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)
	ctx := context.Background()

	f.persistent.Set(ctx, "eventProposalFormData", validOrgData(), nil)

	result := f.svc.RecoverSection(ctx, "", "organization", map[string]any{}, map[string]any{})

	if !result.IsValid {
		t.Fatalf("ожидалось успешное восстановление: %+v", result)
	}
	want := "localStorage:eventProposalFormData"
	if result.Source != want {
		t.Errorf("ожидался источник %q, получен %q", want, result.Source)
	}
	if result.Data["organizationName"] != "Test Organization" {
		t.Errorf("неожиданные данные: %v", result.Data)
	}
	if len(result.MissingFields) != 0 {
		t.Errorf("при успехе отсутствующих полей быть не должно: %v", result.MissingFields)
	}
}

// TestRecoverSection_LegacyOrder проверяет порядок legacy ключей:
// более ранний ключ выигрывает, если валидные данные в нескольких.
func TestRecoverSection_LegacyOrder(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)
	ctx := context.Background()

	second := validOrgData()
	second["organizationName"] = "Second Key Org"
	f.persistent.Set(ctx, "proposalFormData", second, nil)
	f.persistent.Set(ctx, "eventProposalFormData", validOrgData(), nil)

	result := f.svc.RecoverSection(ctx, "", "organization", nil, nil)

	if result.Source != "localStorage:eventProposalFormData" {
		t.Errorf("более ранний ключ должен выигрывать, получен %q", result.Source)
	}
	if result.Data["organizationName"] != "Test Organization" {
		t.Errorf("данные должны быть из первого ключа: %v", result.Data["organizationName"])
	}
}

// TestRecoverSection_SkipsInvalidCandidates проверяет, что невалидные
// кандидаты пропускаются в пользу более поздних валидных.
func TestRecoverSection_SkipsInvalidCandidates(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)
	ctx := context.Background()

	// Неполные данные в legacy ключе
	f.persistent.Set(ctx, "eventProposalFormData", map[string]any{"organizationName": "Only Name"}, nil)
	// Валидные — в сессионном хранилище
	f.session.Set(ctx, "cedoSession_organization", validOrgData(), nil)

	result := f.svc.RecoverSection(ctx, "", "organization", nil, nil)

	if !result.IsValid {
		t.Fatalf("ожидалось успешное восстановление: %+v", result)
	}
	if result.Source != model.SourceSession {
		t.Errorf("ожидался источник sessionStorage, получен %q", result.Source)
	}
}

// TestRecoverSection_DraftAPI проверяет удалённого кандидата:
// секция извлекается из draft.payload.<section>.
func TestRecoverSection_DraftAPI(t *testing.T) {
	client := setupMockDraftAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drafts/draft-001" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "draft-001",
			"payload": {
				"organization": {
					"organizationName": "Remote Org",
					"contactEmail": "remote@example.com",
					"contactName": "Remote Contact",
					"organizationType": "school-based"
				}
			}
		}`)
	})

	f := newRecoveryFixture(t, client, nil)

	result := f.svc.RecoverSection(context.Background(), "draft-001", "organization", nil, nil)

	if !result.IsValid {
		t.Fatalf("ожидалось успешное восстановление: %+v", result)
	}
	if result.Source != model.SourceDraftAPI {
		t.Errorf("ожидался источник draftAPI, получен %q", result.Source)
	}
	if result.Data["organizationName"] != "Remote Org" {
		t.Errorf("неожиданные данные: %v", result.Data)
	}
}

// TestRecoverSection_DraftAPIUsesCache проверяет, что повторное
// восстановление берёт черновик из кэша без запроса к API.
func TestRecoverSection_DraftAPIUsesCache(t *testing.T) {
	requestCount := 0
	client := setupMockDraftAPI(t, func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "draft-001",
			"payload": {
				"organization": {
					"organizationName": "Remote Org",
					"contactEmail": "remote@example.com",
					"contactName": "Remote Contact",
					"organizationType": "school-based"
				}
			}
		}`)
	})

	cache := draftapi.NewCache(16, time.Minute)
	f := newRecoveryFixture(t, client, cache)
	ctx := context.Background()

	for range 2 {
		result := f.svc.RecoverSection(ctx, "draft-001", "organization", nil, nil)
		if !result.IsValid {
			t.Fatalf("ожидалось успешное восстановление: %+v", result)
		}
	}

	if requestCount != 1 {
		t.Errorf("второй проход должен идти из кэша, запросов: %d", requestCount)
	}
}

// TestRecoverSection_NetworkFailure проверяет, что сетевой сбой —
// неуспешный кандидат, а не ошибка: операция завершается исчерпанием.
func TestRecoverSection_NetworkFailure(t *testing.T) {
	client, err := draftapi.New("http://localhost:1", "", 100*time.Millisecond, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	f := newRecoveryFixture(t, client, nil)

	result := f.svc.RecoverSection(context.Background(), "draft-001", "organization", nil, nil)

	if result.IsValid {
		t.Fatal("восстановление не должно быть успешным")
	}
	if result.Source != model.SourceNone {
		t.Errorf("ожидался источник none, получен %q", result.Source)
	}
}

// TestRecoverSection_ServerError проверяет, что не-2xx от Draft API —
// неуспешный кандидат.
func TestRecoverSection_ServerError(t *testing.T) {
	client := setupMockDraftAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	f := newRecoveryFixture(t, client, nil)

	result := f.svc.RecoverSection(context.Background(), "draft-001", "organization", nil, nil)
	if result.IsValid || result.Source != model.SourceNone {
		t.Errorf("ожидалось исчерпание, получено %+v", result)
	}
}

// TestRecoverSection_Exhausted проверяет исчерпание: отсутствующие
// поля берутся из последней выполненной валидации.
func TestRecoverSection_Exhausted(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)

	result := f.svc.RecoverSection(context.Background(), "", "organization", nil, nil)

	if result.IsValid {
		t.Fatal("восстановление не должно быть успешным")
	}
	if result.Source != model.SourceNone {
		t.Errorf("ожидался источник none, получен %q", result.Source)
	}
	sec, _ := schema.Default().Section("organization")
	if !reflect.DeepEqual(result.MissingFields, sec.RequiredFields) {
		t.Errorf("ожидались все обязательные поля %v, получено %v",
			sec.RequiredFields, result.MissingFields)
	}
	if result.Data != nil {
		t.Errorf("при исчерпании данных быть не должно: %v", result.Data)
	}
}

// TestRecoverSection_CorruptLegacyData проверяет, что повреждённая
// запись в хранилище — отсутствие данных, не ошибка.
func TestRecoverSection_CorruptLegacyData(t *testing.T) {
	backend := memstore.New(0)
	backend.Set("eventProposalFormData", []byte("{corrupt json"))

	registry := schema.Default()
	logger := testLogger()
	persistent := storage.NewEngine(backend, registry, storage.Options{Name: "persistent"}, logger)
	session := storage.NewEngine(memstore.New(0), registry, storage.Options{Name: "session"}, logger)
	svc := NewRecoveryService(persistent, session, registry, validate.New(registry), nil, nil, time.Second, logger)

	result := svc.RecoverSection(context.Background(), "", "organization", nil, nil)
	if result.IsValid {
		t.Fatal("повреждённая запись не должна восстанавливаться")
	}
	if result.Source != model.SourceNone {
		t.Errorf("ожидался источник none, получен %q", result.Source)
	}
}

// TestRecoverSection_UnknownSection проверяет незарегистрированную секцию.
func TestRecoverSection_UnknownSection(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)

	result := f.svc.RecoverSection(context.Background(), "", "unknown", validOrgData(), nil)
	if result.IsValid {
		t.Fatal("незарегистрированная секция не должна восстанавливаться")
	}
	if result.Source != model.SourceNone {
		t.Errorf("ожидался источник none, получен %q", result.Source)
	}
}

// TestRecoverSection_OtherSections проверяет восстановление секций
// schoolEvent и reporting из их legacy ключей.
func TestRecoverSection_OtherSections(t *testing.T) {
	f := newRecoveryFixture(t, nil, nil)
	ctx := context.Background()

	f.persistent.Set(ctx, "schoolEventFormData", map[string]any{
		"eventName": "Science Fair",
		"venue":     "Main Hall",
		"startDate": "2026-09-01",
		"endDate":   "2026-09-02",
	}, nil)
	f.persistent.Set(ctx, "accomplishmentReportData", map[string]any{
		"eventStatus":          "completed",
		"accomplishmentReport": "Отчёт о мероприятии",
	}, nil)

	event := f.svc.RecoverSection(ctx, "", "schoolEvent", nil, nil)
	if !event.IsValid || event.Source != "localStorage:schoolEventFormData" {
		t.Errorf("schoolEvent: ожидался localStorage:schoolEventFormData, получено %+v", event)
	}

	reporting := f.svc.RecoverSection(ctx, "", "reporting", nil, nil)
	if !reporting.IsValid || reporting.Source != "localStorage:accomplishmentReportData" {
		t.Errorf("reporting: ожидался localStorage:accomplishmentReportData, получено %+v", reporting)
	}
}
