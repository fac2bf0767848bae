// Пакет config — загрузка и валидация конфигурации draft-keeper
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации draft-keeper.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Уникальный идентификатор экземпляра (например, "dk-cedo-01")
	InstanceID string
	// Путь к директории хранения записей
	DataDir string
	// Путь к директории WAL
	WALDir string
	// Квота постоянного хранилища в байтах
	MaxCapacity int64
	// Порог компрессии файлового дескриптора в байтах
	CompressionThreshold int
	// Возраст записи, после которого очистка квоты её удаляет
	CleanupStaleness time.Duration
	// Интервал фоновой очистки хранилищ
	SweepInterval time.Duration
	// Максимальное количество записей сессионного хранилища
	SessionMaxEntries int
	// Базовый URL Draft API (пусто — удалённое восстановление выключено)
	DraftAPIURL string
	// Таймаут HTTP-запросов к Draft API
	DraftAPITimeout time.Duration
	// Путь к CA-сертификату для проверки TLS Draft API (опционально)
	DraftAPICACert string
	// Статический сервисный токен Draft API (fallback, если у входящего
	// запроса нет своего bearer-токена)
	DraftAPIToken string
	// Максимальный размер LRU-кэша черновиков
	DraftCacheSize int
	// TTL записи кэша черновиков
	DraftCacheTTL time.Duration
	// URL JWKS endpoint (пусто — запуск без аутентификации)
	JWKSUrl string
	// Путь к CA-сертификату для проверки TLS JWKS endpoint (опционально)
	JWKSCACert string
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Интервал фонового обновления ключей JWKS
	JWKSRefreshInterval time.Duration
	// Допуск рассинхронизации часов при проверке exp/nbf токена
	JWTLeeway time.Duration
	// Путь к TLS сертификату (опционально)
	TLSCert string
	// Путь к TLS приватному ключу (опционально)
	TLSKey string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// Таймаут graceful shutdown HTTP-сервера.
	// Должен быть меньше K8s terminationGracePeriodSeconds.
	ShutdownTimeout time.Duration
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics (DK_DEPHEALTH_GROUP)
	DephealthGroup string
	// Имя зависимости (целевого сервиса) в метриках topologymetrics
	DephealthDepName string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}

	// DK_PORT — порт HTTP-сервера (по умолчанию 8030)
	port, err := getEnvInt("DK_PORT", 8030)
	if err != nil {
		return nil, fmt.Errorf("DK_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("DK_PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	// DK_INSTANCE_ID — обязательный
	cfg.InstanceID, err = getEnvRequired("DK_INSTANCE_ID")
	if err != nil {
		return nil, err
	}

	// DK_DATA_DIR — обязательный
	cfg.DataDir, err = getEnvRequired("DK_DATA_DIR")
	if err != nil {
		return nil, err
	}

	// DK_WAL_DIR — обязательный
	cfg.WALDir, err = getEnvRequired("DK_WAL_DIR")
	if err != nil {
		return nil, err
	}

	// DK_MAX_CAPACITY — квота постоянного хранилища (по умолчанию 10 MB)
	cfg.MaxCapacity, err = getEnvInt64("DK_MAX_CAPACITY", 10485760)
	if err != nil {
		return nil, fmt.Errorf("DK_MAX_CAPACITY: %w", err)
	}
	if cfg.MaxCapacity <= 0 {
		return nil, fmt.Errorf("DK_MAX_CAPACITY: значение должно быть положительным")
	}

	// DK_COMPRESSION_THRESHOLD — порог компрессии дескриптора (по умолчанию 256 KB)
	threshold, err := getEnvInt("DK_COMPRESSION_THRESHOLD", 262144)
	if err != nil {
		return nil, fmt.Errorf("DK_COMPRESSION_THRESHOLD: %w", err)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("DK_COMPRESSION_THRESHOLD: значение должно быть положительным")
	}
	cfg.CompressionThreshold = threshold

	// DK_CLEANUP_STALENESS — порог устарелости записи (по умолчанию 24h)
	cfg.CleanupStaleness, err = getEnvDuration("DK_CLEANUP_STALENESS", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("DK_CLEANUP_STALENESS: %w", err)
	}

	// DK_SWEEP_INTERVAL — интервал фоновой очистки (по умолчанию 10m)
	cfg.SweepInterval, err = getEnvDuration("DK_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DK_SWEEP_INTERVAL: %w", err)
	}

	// DK_SESSION_MAX_ENTRIES — лимит сессионного хранилища (по умолчанию 1024)
	cfg.SessionMaxEntries, err = getEnvInt("DK_SESSION_MAX_ENTRIES", 1024)
	if err != nil {
		return nil, fmt.Errorf("DK_SESSION_MAX_ENTRIES: %w", err)
	}
	if cfg.SessionMaxEntries <= 0 {
		return nil, fmt.Errorf("DK_SESSION_MAX_ENTRIES: значение должно быть положительным")
	}

	// DK_DRAFT_API_URL — базовый URL Draft API (опционально)
	cfg.DraftAPIURL = getEnvDefault("DK_DRAFT_API_URL", "")

	// DK_DRAFT_API_TIMEOUT — таймаут запросов к Draft API (по умолчанию 5s)
	cfg.DraftAPITimeout, err = getEnvDuration("DK_DRAFT_API_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_DRAFT_API_TIMEOUT: %w", err)
	}

	// DK_DRAFT_API_CA_CERT — CA-сертификат Draft API (опционально)
	cfg.DraftAPICACert = getEnvDefault("DK_DRAFT_API_CA_CERT", "")

	// DK_DRAFT_API_TOKEN — статический сервисный токен (опционально)
	cfg.DraftAPIToken = getEnvDefault("DK_DRAFT_API_TOKEN", "")

	// DK_DRAFT_CACHE_SIZE — размер кэша черновиков (по умолчанию 128)
	cfg.DraftCacheSize, err = getEnvInt("DK_DRAFT_CACHE_SIZE", 128)
	if err != nil {
		return nil, fmt.Errorf("DK_DRAFT_CACHE_SIZE: %w", err)
	}
	if cfg.DraftCacheSize <= 0 {
		return nil, fmt.Errorf("DK_DRAFT_CACHE_SIZE: значение должно быть положительным")
	}

	// DK_DRAFT_CACHE_TTL — TTL кэша черновиков (по умолчанию 30s)
	cfg.DraftCacheTTL, err = getEnvDuration("DK_DRAFT_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_DRAFT_CACHE_TTL: %w", err)
	}

	// DK_JWKS_URL — JWKS endpoint (опционально: пусто — без аутентификации)
	cfg.JWKSUrl = getEnvDefault("DK_JWKS_URL", "")

	// DK_JWKS_CA_CERT — CA-сертификат JWKS endpoint (опционально)
	cfg.JWKSCACert = getEnvDefault("DK_JWKS_CA_CERT", "")

	// DK_JWKS_CLIENT_TIMEOUT — таймаут HTTP-клиента JWKS (по умолчанию 30s)
	cfg.JWKSClientTimeout, err = getEnvDuration("DK_JWKS_CLIENT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// DK_JWKS_REFRESH_INTERVAL — интервал обновления ключей JWKS (по умолчанию 15s)
	cfg.JWKSRefreshInterval, err = getEnvDuration("DK_JWKS_REFRESH_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// DK_JWT_LEEWAY — допуск рассинхронизации часов (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("DK_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_JWT_LEEWAY: %w", err)
	}

	// DK_TLS_CERT / DK_TLS_KEY — TLS-сертификат сервера (опционально, парой)
	cfg.TLSCert = getEnvDefault("DK_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("DK_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("DK_TLS_CERT и DK_TLS_KEY должны быть заданы вместе")
	}

	// DK_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("DK_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("DK_LOG_LEVEL: %w", err)
	}

	// DK_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("DK_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DK_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// DK_HTTP_READ_TIMEOUT — таймаут чтения запроса (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("DK_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_HTTP_READ_TIMEOUT: %w", err)
	}

	// DK_HTTP_WRITE_TIMEOUT — таймаут записи ответа (по умолчанию 60s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("DK_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// DK_HTTP_IDLE_TIMEOUT — таймаут idle-соединения (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("DK_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// DK_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("DK_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_SHUTDOWN_TIMEOUT: %w", err)
	}

	// DK_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("DK_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DK_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// DK_DEPHEALTH_GROUP — имя группы в метриках topologymetrics (по умолчанию "draft-keeper")
	cfg.DephealthGroup = getEnvDefault("DK_DEPHEALTH_GROUP", "draft-keeper")

	// DK_DEPHEALTH_DEP_NAME — имя зависимости в метриках topologymetrics (по умолчанию "draft-api")
	cfg.DephealthDepName = getEnvDefault("DK_DEPHEALTH_DEP_NAME", "draft-api")

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 10m, 24h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
