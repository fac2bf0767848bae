package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setEnvVars устанавливает переменные окружения для теста и возвращает
// функцию очистки. Всегда вызывать defer cleanup().
func setEnvVars(t *testing.T, vars map[string]string) func() {
	t.Helper()

	// Сохраняем оригинальные значения
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for k := range vars {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
	}

	// Устанавливаем новые
	for k, v := range vars {
		os.Setenv(k, v)
	}

	return func() {
		for k := range vars {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// clearAllDKEnvVars очищает все переменные окружения DK_* для чистого теста.
func clearAllDKEnvVars(t *testing.T) func() {
	t.Helper()
	keys := []string{
		"DK_PORT", "DK_INSTANCE_ID", "DK_DATA_DIR", "DK_WAL_DIR",
		"DK_MAX_CAPACITY", "DK_COMPRESSION_THRESHOLD",
		"DK_CLEANUP_STALENESS", "DK_SWEEP_INTERVAL", "DK_SESSION_MAX_ENTRIES",
		"DK_DRAFT_API_URL", "DK_DRAFT_API_TIMEOUT", "DK_DRAFT_API_CA_CERT",
		"DK_DRAFT_API_TOKEN", "DK_DRAFT_CACHE_SIZE", "DK_DRAFT_CACHE_TTL",
		"DK_JWKS_URL", "DK_JWKS_CA_CERT", "DK_JWKS_CLIENT_TIMEOUT",
		"DK_JWKS_REFRESH_INTERVAL", "DK_JWT_LEEWAY",
		"DK_TLS_CERT", "DK_TLS_KEY", "DK_LOG_LEVEL", "DK_LOG_FORMAT",
		"DK_HTTP_READ_TIMEOUT", "DK_HTTP_WRITE_TIMEOUT", "DK_HTTP_IDLE_TIMEOUT",
		"DK_SHUTDOWN_TIMEOUT", "DK_DEPHEALTH_CHECK_INTERVAL",
		"DK_DEPHEALTH_GROUP", "DK_DEPHEALTH_DEP_NAME",
	}
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
		os.Unsetenv(k)
	}
	return func() {
		for _, k := range keys {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// requiredEnvVars возвращает минимальный набор обязательных переменных.
func requiredEnvVars() map[string]string {
	return map[string]string{
		"DK_INSTANCE_ID": "dk-test-01",
		"DK_DATA_DIR":    "/tmp/data",
		"DK_WAL_DIR":     "/tmp/wal",
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cleanup := clearAllDKEnvVars(t)
	defer cleanup()

	cleanupVars := setEnvVars(t, requiredEnvVars())
	defer cleanupVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8030 {
		t.Errorf("Port: ожидалось 8030, получено %d", cfg.Port)
	}
	if cfg.MaxCapacity != 10485760 {
		t.Errorf("MaxCapacity: ожидалось 10485760, получено %d", cfg.MaxCapacity)
	}
	if cfg.CompressionThreshold != 262144 {
		t.Errorf("CompressionThreshold: ожидалось 262144, получено %d", cfg.CompressionThreshold)
	}
	if cfg.CleanupStaleness != 24*time.Hour {
		t.Errorf("CleanupStaleness: ожидалось 24h, получено %v", cfg.CleanupStaleness)
	}
	if cfg.SweepInterval != 10*time.Minute {
		t.Errorf("SweepInterval: ожидалось 10m, получено %v", cfg.SweepInterval)
	}
	if cfg.SessionMaxEntries != 1024 {
		t.Errorf("SessionMaxEntries: ожидалось 1024, получено %d", cfg.SessionMaxEntries)
	}
	if cfg.DraftAPIURL != "" {
		t.Errorf("DraftAPIURL: ожидалось пустую строку, получено %q", cfg.DraftAPIURL)
	}
	if cfg.DraftAPITimeout != 5*time.Second {
		t.Errorf("DraftAPITimeout: ожидалось 5s, получено %v", cfg.DraftAPITimeout)
	}
	if cfg.DraftCacheSize != 128 {
		t.Errorf("DraftCacheSize: ожидалось 128, получено %d", cfg.DraftCacheSize)
	}
	if cfg.DraftCacheTTL != 30*time.Second {
		t.Errorf("DraftCacheTTL: ожидалось 30s, получено %v", cfg.DraftCacheTTL)
	}
	if cfg.JWKSUrl != "" {
		t.Errorf("JWKSUrl: ожидалось пустую строку, получено %q", cfg.JWKSUrl)
	}
	if cfg.JWKSClientTimeout != 30*time.Second {
		t.Errorf("JWKSClientTimeout: ожидалось 30s, получено %v", cfg.JWKSClientTimeout)
	}
	if cfg.JWKSRefreshInterval != 15*time.Second {
		t.Errorf("JWKSRefreshInterval: ожидалось 15s, получено %v", cfg.JWKSRefreshInterval)
	}
	if cfg.JWTLeeway != 30*time.Second {
		t.Errorf("JWTLeeway: ожидалось 30s, получено %v", cfg.JWTLeeway)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: ожидалось INFO, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: ожидалось 'json', получено %q", cfg.LogFormat)
	}
	if cfg.HTTPReadTimeout != 30*time.Second {
		t.Errorf("HTTPReadTimeout: ожидалось 30s, получено %v", cfg.HTTPReadTimeout)
	}
	if cfg.HTTPWriteTimeout != 60*time.Second {
		t.Errorf("HTTPWriteTimeout: ожидалось 60s, получено %v", cfg.HTTPWriteTimeout)
	}
	if cfg.HTTPIdleTimeout != 120*time.Second {
		t.Errorf("HTTPIdleTimeout: ожидалось 120s, получено %v", cfg.HTTPIdleTimeout)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 5s, получено %v", cfg.ShutdownTimeout)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval: ожидалось 15s, получено %v", cfg.DephealthCheckInterval)
	}
	if cfg.DephealthGroup != "draft-keeper" {
		t.Errorf("DephealthGroup: ожидалось 'draft-keeper', получено %q", cfg.DephealthGroup)
	}
	if cfg.DephealthDepName != "draft-api" {
		t.Errorf("DephealthDepName: ожидалось 'draft-api', получено %q", cfg.DephealthDepName)
	}
}

func TestLoad_AllCustomValues(t *testing.T) {
	cleanup := clearAllDKEnvVars(t)
	defer cleanup()

	vars := requiredEnvVars()
	vars["DK_PORT"] = "8031"
	vars["DK_MAX_CAPACITY"] = "5242880" // 5 MB
	vars["DK_COMPRESSION_THRESHOLD"] = "131072"
	vars["DK_CLEANUP_STALENESS"] = "48h"
	vars["DK_SWEEP_INTERVAL"] = "5m"
	vars["DK_SESSION_MAX_ENTRIES"] = "256"
	vars["DK_DRAFT_API_URL"] = "https://api.cedo.lan/api/v1"
	vars["DK_DRAFT_API_TIMEOUT"] = "10s"
	vars["DK_DRAFT_API_TOKEN"] = "service-token"
	vars["DK_DRAFT_CACHE_SIZE"] = "64"
	vars["DK_DRAFT_CACHE_TTL"] = "1m"
	vars["DK_JWKS_URL"] = "https://auth.cedo.lan/.well-known/jwks.json"
	vars["DK_JWKS_CLIENT_TIMEOUT"] = "20s"
	vars["DK_JWKS_REFRESH_INTERVAL"] = "30s"
	vars["DK_JWT_LEEWAY"] = "10s"
	vars["DK_LOG_LEVEL"] = "debug"
	vars["DK_LOG_FORMAT"] = "text"
	vars["DK_HTTP_READ_TIMEOUT"] = "20s"
	vars["DK_HTTP_WRITE_TIMEOUT"] = "45s"
	vars["DK_HTTP_IDLE_TIMEOUT"] = "90s"
	vars["DK_SHUTDOWN_TIMEOUT"] = "15s"
	vars["DK_DEPHEALTH_CHECK_INTERVAL"] = "5s"
	vars["DK_DEPHEALTH_GROUP"] = "cedo-sidecars"
	vars["DK_DEPHEALTH_DEP_NAME"] = "cedo-drafts"

	cleanupVars := setEnvVars(t, vars)
	defer cleanupVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 8031 {
		t.Errorf("Port: ожидалось 8031, получено %d", cfg.Port)
	}
	if cfg.InstanceID != "dk-test-01" {
		t.Errorf("InstanceID: ожидалось 'dk-test-01', получено %q", cfg.InstanceID)
	}
	if cfg.MaxCapacity != 5242880 {
		t.Errorf("MaxCapacity: ожидалось 5242880, получено %d", cfg.MaxCapacity)
	}
	if cfg.CompressionThreshold != 131072 {
		t.Errorf("CompressionThreshold: ожидалось 131072, получено %d", cfg.CompressionThreshold)
	}
	if cfg.CleanupStaleness != 48*time.Hour {
		t.Errorf("CleanupStaleness: ожидалось 48h, получено %v", cfg.CleanupStaleness)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval: ожидалось 5m, получено %v", cfg.SweepInterval)
	}
	if cfg.SessionMaxEntries != 256 {
		t.Errorf("SessionMaxEntries: ожидалось 256, получено %d", cfg.SessionMaxEntries)
	}
	if cfg.DraftAPIURL != "https://api.cedo.lan/api/v1" {
		t.Errorf("DraftAPIURL: получено %q", cfg.DraftAPIURL)
	}
	if cfg.DraftAPITimeout != 10*time.Second {
		t.Errorf("DraftAPITimeout: ожидалось 10s, получено %v", cfg.DraftAPITimeout)
	}
	if cfg.DraftAPIToken != "service-token" {
		t.Errorf("DraftAPIToken: получено %q", cfg.DraftAPIToken)
	}
	if cfg.DraftCacheSize != 64 {
		t.Errorf("DraftCacheSize: ожидалось 64, получено %d", cfg.DraftCacheSize)
	}
	if cfg.DraftCacheTTL != time.Minute {
		t.Errorf("DraftCacheTTL: ожидалось 1m, получено %v", cfg.DraftCacheTTL)
	}
	if cfg.JWKSUrl != "https://auth.cedo.lan/.well-known/jwks.json" {
		t.Errorf("JWKSUrl: получено %q", cfg.JWKSUrl)
	}
	if cfg.JWKSClientTimeout != 20*time.Second {
		t.Errorf("JWKSClientTimeout: ожидалось 20s, получено %v", cfg.JWKSClientTimeout)
	}
	if cfg.JWKSRefreshInterval != 30*time.Second {
		t.Errorf("JWKSRefreshInterval: ожидалось 30s, получено %v", cfg.JWKSRefreshInterval)
	}
	if cfg.JWTLeeway != 10*time.Second {
		t.Errorf("JWTLeeway: ожидалось 10s, получено %v", cfg.JWTLeeway)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: ожидалось DEBUG, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: ожидалось 'text', получено %q", cfg.LogFormat)
	}
	if cfg.HTTPReadTimeout != 20*time.Second {
		t.Errorf("HTTPReadTimeout: ожидалось 20s, получено %v", cfg.HTTPReadTimeout)
	}
	if cfg.HTTPWriteTimeout != 45*time.Second {
		t.Errorf("HTTPWriteTimeout: ожидалось 45s, получено %v", cfg.HTTPWriteTimeout)
	}
	if cfg.HTTPIdleTimeout != 90*time.Second {
		t.Errorf("HTTPIdleTimeout: ожидалось 90s, получено %v", cfg.HTTPIdleTimeout)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 15s, получено %v", cfg.ShutdownTimeout)
	}
	if cfg.DephealthCheckInterval != 5*time.Second {
		t.Errorf("DephealthCheckInterval: ожидалось 5s, получено %v", cfg.DephealthCheckInterval)
	}
	if cfg.DephealthGroup != "cedo-sidecars" {
		t.Errorf("DephealthGroup: получено %q", cfg.DephealthGroup)
	}
	if cfg.DephealthDepName != "cedo-drafts" {
		t.Errorf("DephealthDepName: получено %q", cfg.DephealthDepName)
	}
}

func TestLoad_MissingRequiredVars(t *testing.T) {
	requiredKeys := []string{
		"DK_INSTANCE_ID", "DK_DATA_DIR", "DK_WAL_DIR",
	}

	for _, missing := range requiredKeys {
		t.Run(missing, func(t *testing.T) {
			cleanup := clearAllDKEnvVars(t)
			defer cleanup()

			vars := requiredEnvVars()
			delete(vars, missing)
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			_, err := Load()
			if err == nil {
				t.Errorf("ожидалась ошибка при отсутствии %s", missing)
			}
		})
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"ноль", "0"},
		{"выше диапазона", "70000"},
		{"не число", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := clearAllDKEnvVars(t)
			defer cleanup()

			vars := requiredEnvVars()
			vars["DK_PORT"] = tt.value
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			_, err := Load()
			if err == nil {
				t.Errorf("ожидалась ошибка для DK_PORT=%s", tt.value)
			}
		})
	}
}

func TestLoad_InvalidMaxCapacity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"не число", "abc"},
		{"нулевое", "0"},
		{"отрицательное", "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := clearAllDKEnvVars(t)
			defer cleanup()

			vars := requiredEnvVars()
			vars["DK_MAX_CAPACITY"] = tt.value
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			_, err := Load()
			if err == nil {
				t.Errorf("ожидалась ошибка для DK_MAX_CAPACITY=%s", tt.value)
			}
		})
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	durationVars := []string{
		"DK_CLEANUP_STALENESS", "DK_SWEEP_INTERVAL",
		"DK_DRAFT_API_TIMEOUT", "DK_DRAFT_CACHE_TTL",
		"DK_JWKS_CLIENT_TIMEOUT", "DK_JWKS_REFRESH_INTERVAL", "DK_JWT_LEEWAY",
		"DK_HTTP_READ_TIMEOUT", "DK_HTTP_WRITE_TIMEOUT", "DK_HTTP_IDLE_TIMEOUT",
		"DK_SHUTDOWN_TIMEOUT", "DK_DEPHEALTH_CHECK_INTERVAL",
	}

	for _, varName := range durationVars {
		t.Run(varName, func(t *testing.T) {
			cleanup := clearAllDKEnvVars(t)
			defer cleanup()

			vars := requiredEnvVars()
			vars[varName] = "not-a-duration"
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			_, err := Load()
			if err == nil {
				t.Errorf("ожидалась ошибка для невалидного %s", varName)
			}
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	cleanup := clearAllDKEnvVars(t)
	defer cleanup()

	vars := requiredEnvVars()
	vars["DK_LOG_LEVEL"] = "invalid"
	cleanupVars := setEnvVars(t, vars)
	defer cleanupVars()

	_, err := Load()
	if err == nil {
		t.Error("ожидалась ошибка для невалидного DK_LOG_LEVEL")
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	cleanup := clearAllDKEnvVars(t)
	defer cleanup()

	vars := requiredEnvVars()
	vars["DK_LOG_FORMAT"] = "yaml"
	cleanupVars := setEnvVars(t, vars)
	defer cleanupVars()

	_, err := Load()
	if err == nil {
		t.Error("ожидалась ошибка для невалидного DK_LOG_FORMAT")
	}
}

// TestLoad_TLSPair проверяет, что сертификат и ключ задаются только парой.
func TestLoad_TLSPair(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr bool
	}{
		{"только сертификат", map[string]string{"DK_TLS_CERT": "/tmp/tls.crt"}, true},
		{"только ключ", map[string]string{"DK_TLS_KEY": "/tmp/tls.key"}, true},
		{"пара", map[string]string{"DK_TLS_CERT": "/tmp/tls.crt", "DK_TLS_KEY": "/tmp/tls.key"}, false},
		{"ничего", map[string]string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := clearAllDKEnvVars(t)
			defer cleanup()

			vars := requiredEnvVars()
			for k, v := range tt.vars {
				vars[k] = v
			}
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			_, err := Load()
			if tt.wantErr && err == nil {
				t.Error("ожидалась ошибка")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("неожиданная ошибка: %v", err)
			}
		})
	}
}

func TestLoad_ValidLogLevels(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cleanup := clearAllDKEnvVars(t)
			defer cleanup()

			vars := requiredEnvVars()
			vars["DK_LOG_LEVEL"] = tt.input
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			cfg, err := Load()
			if err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
			if cfg.LogLevel != tt.expected {
				t.Errorf("LogLevel: ожидалось %v, получено %v", tt.expected, cfg.LogLevel)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"json", "json"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel:  slog.LevelInfo,
				LogFormat: tt.format,
			}
			logger := SetupLogger(cfg)
			if logger == nil {
				t.Fatal("SetupLogger вернул nil")
			}
		})
	}
}
