// stub.go — заглушки для всех endpoints ServerInterface.
// Используются при частичной сборке сервера и в контрактных тестах.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cedo-platform/draft-keeper/internal/api/generated"
)

// StubHandler реализует generated.ServerInterface.
// Все методы возвращают 501 Not Implemented.
type StubHandler struct{}

// NewStubHandler создаёт заглушку ServerInterface.
func NewStubHandler() *StubHandler {
	return &StubHandler{}
}

// notImplemented отправляет стандартный ответ 501 в формате ошибки API.
func notImplemented(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotImplemented)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    "NOT_IMPLEMENTED",
			"message": "Endpoint ещё не реализован",
		},
	})
}

// --- Секции черновика ---

func (s *StubHandler) SaveSection(w http.ResponseWriter, r *http.Request, draftId generated.DraftId, sectionName generated.SectionName) {
	notImplemented(w)
}

func (s *StubHandler) GetSection(w http.ResponseWriter, r *http.Request, draftId generated.DraftId, sectionName generated.SectionName) {
	notImplemented(w)
}

func (s *StubHandler) DeleteSection(w http.ResponseWriter, r *http.Request, draftId generated.DraftId, sectionName generated.SectionName) {
	notImplemented(w)
}

// --- Восстановление и консолидация ---

func (s *StubHandler) RecoverDraft(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	notImplemented(w)
}

func (s *StubHandler) ConsolidateDraft(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	notImplemented(w)
}

// --- Резервный снимок ---

func (s *StubHandler) CreateBackup(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	notImplemented(w)
}

func (s *StubHandler) GetBackup(w http.ResponseWriter, r *http.Request, draftId generated.DraftId) {
	notImplemented(w)
}

// --- Валидация ---

func (s *StubHandler) ValidateSection(w http.ResponseWriter, r *http.Request, sectionName generated.SectionName) {
	notImplemented(w)
}

// --- System ---

func (s *StubHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	notImplemented(w)
}

// --- Maintenance ---

func (s *StubHandler) RunCleanup(w http.ResponseWriter, r *http.Request) {
	notImplemented(w)
}

// --- Health ---

func (s *StubHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	notImplemented(w)
}

func (s *StubHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	notImplemented(w)
}

func (s *StubHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	notImplemented(w)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*StubHandler)(nil)
