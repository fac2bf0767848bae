// Draft API Mock Server — минималистичный сервис для тестовой среды DK.
// Имитирует Draft API платформы CEDO: хранит черновики в памяти,
// отдаёт их по GET /drafts/{draftId} и принимает по PUT /drafts/{draftId}.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
)

// --- Конфигурация ---

// config хранит конфигурацию сервиса из env-переменных.
type config struct {
	Port       string // MOCK_PORT — порт HTTP-сервера (default: 8080)
	TLSCert    string // MOCK_TLS_CERT — путь к TLS сертификату (пусто — HTTP)
	TLSKey     string // MOCK_TLS_KEY — путь к TLS приватному ключу (пусто — HTTP)
	DraftsFile string // MOCK_DRAFTS_FILE — JSON-файл с черновиками для загрузки при старте
}

// loadConfig загружает конфигурацию из переменных окружения.
func loadConfig() config {
	return config{
		Port:       envOrDefault("MOCK_PORT", "8080"),
		TLSCert:    os.Getenv("MOCK_TLS_CERT"),
		TLSKey:     os.Getenv("MOCK_TLS_KEY"),
		DraftsFile: os.Getenv("MOCK_DRAFTS_FILE"),
	}
}

// envOrDefault возвращает значение env-переменной или default.
func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// --- Черновики ---

// draft — черновик в формате ответа Draft API.
type draft struct {
	ID      string                     `json:"id"`
	Payload map[string]json.RawMessage `json:"payload"`
}

// store — in-memory хранилище черновиков.
type store struct {
	mu     sync.RWMutex
	drafts map[string]*draft
}

func newStore() *store {
	return &store{drafts: make(map[string]*draft)}
}

func (s *store) get(id string) (*draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	return d, ok
}

func (s *store) put(d *draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = d
}

func (s *store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// loadFromFile загружает черновики из JSON-файла:
// {"<draftId>": {"organization": {...}, "schoolEvent": {...}}, ...}.
func (s *store) loadFromFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var seed map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("невалидный JSON в %s: %w", path, err)
	}

	for id, payload := range seed {
		s.put(&draft{ID: id, Payload: payload})
	}
	return len(seed), nil
}

// --- Handlers ---

// server объединяет состояние сервиса.
type server struct {
	store  *store
	logger *slog.Logger
}

// handleDrafts обрабатывает /drafts/{draftId}:
// GET — выдача черновика, PUT — загрузка, DELETE — удаление.
func (s *server) handleDrafts(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/drafts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "Ожидается /drafts/{draftId}")
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, ok := s.store.get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "Черновик не найден: "+id)
			return
		}
		s.logger.Info("Черновик выдан",
			slog.String("draft_id", id),
			slog.Bool("authorized", r.Header.Get("Authorization") != ""),
		)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(d)

	case http.MethodPut:
		var payload map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "Невалидный JSON: "+err.Error())
			return
		}
		s.store.put(&draft{ID: id, Payload: payload})
		s.logger.Info("Черновик загружен",
			slog.String("draft_id", id),
			slog.Int("sections", len(payload)),
		)
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		s.store.remove(id)
		s.logger.Info("Черновик удалён", slog.String("draft_id", id))
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleHealth обрабатывает GET /health — проверка готовности сервиса.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// writeError отправляет JSON-ошибку клиенту.
func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// --- Main ---

func main() {
	// Загрузка конфигурации
	cfg := loadConfig()

	// Настройка логгера (JSON)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Хранилище черновиков
	st := newStore()
	if cfg.DraftsFile != "" {
		count, err := st.loadFromFile(cfg.DraftsFile)
		if err != nil {
			logger.Error("Ошибка загрузки черновиков", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Черновики загружены из файла",
			slog.String("file", cfg.DraftsFile),
			slog.Int("count", count),
		)
	}

	// Создаём сервер
	srv := &server{
		store:  st,
		logger: logger,
	}

	// Маршруты
	mux := http.NewServeMux()
	mux.HandleFunc("/drafts/", srv.handleDrafts)
	mux.HandleFunc("/health", srv.handleHealth)

	addr := ":" + cfg.Port

	// Запуск: TLS или HTTP
	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		logger.Info("Запуск Draft API Mock Server (HTTPS)",
			slog.String("addr", addr),
			slog.String("tls_cert", cfg.TLSCert),
		)
		if err := http.ListenAndServeTLS(addr, cfg.TLSCert, cfg.TLSKey, mux); err != nil {
			logger.Error("Ошибка сервера", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Info("Запуск Draft API Mock Server (HTTP)", slog.String("addr", addr))
		fmt.Fprintf(os.Stderr, "ВНИМАНИЕ: TLS не настроен, работаем по HTTP\n")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Ошибка сервера", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}
