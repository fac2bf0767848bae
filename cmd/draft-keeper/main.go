// Точка входа draft-keeper — демона хранения черновиков заявок CEDO.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/cedo-platform/draft-keeper/internal/api/handlers"
	"github.com/cedo-platform/draft-keeper/internal/api/middleware"
	"github.com/cedo-platform/draft-keeper/internal/config"
	"github.com/cedo-platform/draft-keeper/internal/draftapi"
	"github.com/cedo-platform/draft-keeper/internal/schema"
	"github.com/cedo-platform/draft-keeper/internal/server"
	"github.com/cedo-platform/draft-keeper/internal/service"
	"github.com/cedo-platform/draft-keeper/internal/storage"
	"github.com/cedo-platform/draft-keeper/internal/storage/diskstore"
	"github.com/cedo-platform/draft-keeper/internal/storage/memstore"
	"github.com/cedo-platform/draft-keeper/internal/storage/wal"
	"github.com/cedo-platform/draft-keeper/internal/validate"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Draft Keeper запускается",
		slog.String("instance_id", cfg.InstanceID),
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
	)

	// --- Инициализация компонентов ---

	// 1. Реестр схем секций
	registry := schema.Default()
	logger.Info("Реестр схем загружен",
		slog.String("registry_version", schema.RegistryVersion),
		slog.Any("sections", registry.Sections()),
	)

	// 2. WAL-движок
	walEngine, err := wal.New(cfg.WALDir, logger)
	if err != nil {
		logger.Error("Ошибка инициализации WAL", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// WAL recovery: откатываем pending транзакции
	pending, err := walEngine.RecoverPending()
	if err != nil {
		logger.Error("Ошибка восстановления WAL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(pending) > 0 {
		logger.Warn("Обнаружены незавершённые WAL-транзакции, откатываем",
			slog.Int("count", len(pending)),
		)
		for _, entry := range pending {
			if rbErr := walEngine.Rollback(entry.TransactionID); rbErr != nil {
				logger.Error("Ошибка отката WAL-транзакции",
					slog.String("tx_id", entry.TransactionID),
					slog.String("error", rbErr.Error()),
				)
			} else {
				logger.Info("WAL-транзакция откачена",
					slog.String("tx_id", entry.TransactionID),
					slog.String("key", entry.Key),
				)
			}
		}
	}

	// 3. Дисковое хранилище (постоянное)
	diskStore, err := diskstore.New(cfg.DataDir, cfg.MaxCapacity, walEngine, logger)
	if err != nil {
		logger.Error("Ошибка инициализации дискового хранилища", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Движки хранения: постоянный и сессионный
	persistent := storage.NewEngine(diskStore, registry, storage.Options{
		Name:                 "persistent",
		MaxSize:              cfg.MaxCapacity,
		CompressionThreshold: cfg.CompressionThreshold,
		Staleness:            cfg.CleanupStaleness,
	}, logger)

	session := storage.NewEngine(memstore.New(cfg.SessionMaxEntries), registry, storage.Options{
		Name:      "session",
		Staleness: cfg.CleanupStaleness,
	}, logger)

	// Обновляем Prometheus метрики хранилищ
	updateStorageMetrics(persistent, session)

	// 5. Клиент Draft API (опционально)
	var draftClient *draftapi.Client
	var draftCache *draftapi.Cache
	if cfg.DraftAPIURL != "" {
		// Токен из контекста запроса (сквозная передача Authorization),
		// при его отсутствии — статический из конфигурации
		tokenProvider := func(ctx context.Context) (string, error) {
			if token := middleware.RawTokenFromContext(ctx); token != "" {
				return token, nil
			}
			return cfg.DraftAPIToken, nil
		}

		draftClient, err = draftapi.New(cfg.DraftAPIURL, cfg.DraftAPICACert, cfg.DraftAPITimeout, tokenProvider, logger)
		if err != nil {
			logger.Error("Ошибка инициализации клиента Draft API", slog.String("error", err.Error()))
			os.Exit(1)
		}
		draftCache = draftapi.NewCache(cfg.DraftCacheSize, cfg.DraftCacheTTL)
		logger.Info("Клиент Draft API настроен",
			slog.String("url", cfg.DraftAPIURL),
			slog.Int("cache_size", cfg.DraftCacheSize),
		)
	} else {
		logger.Info("Draft API не настроен, удалённое восстановление отключено")
	}

	// 6. Сервисы
	validator := validate.New(registry)
	recoverySvc := service.NewRecoveryService(persistent, session, registry, validator, draftClient, draftCache, cfg.DraftAPITimeout, logger)
	backupSvc := service.NewBackupService(persistent, logger)
	consolidateSvc := service.NewConsolidateService(recoverySvc, backupSvc, logger)

	// 7. Фоновые процессы
	ctx := context.Background()

	// 7.1 Фоновая очистка хранилищ
	sweepSvc := service.NewSweepService([]*storage.Engine{persistent, session}, cfg.SweepInterval, logger)
	sweepSvc.Start(ctx)

	// 7.2 topologymetrics — мониторинг доступности Draft API
	var dephealthSvc *service.DephealthService
	if cfg.DraftAPIURL != "" {
		var dephealthErr error
		dephealthSvc, dephealthErr = service.NewDephealthService(
			cfg.InstanceID,
			cfg.DephealthGroup,
			cfg.DephealthDepName,
			cfg.DraftAPIURL,
			cfg.DephealthCheckInterval,
			logger,
		)
		if dephealthErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dephealthErr.Error()),
			)
		} else {
			if startErr := dephealthSvc.Start(ctx); startErr != nil {
				logger.Warn("Ошибка запуска topologymetrics",
					slog.String("error", startErr.Error()),
				)
			} else {
				logger.Info("topologymetrics запущен",
					slog.String("draft_api_url", cfg.DraftAPIURL),
					slog.String("check_interval", cfg.DephealthCheckInterval.String()),
				)
			}
		}
	}

	// 8. Handlers
	draftsHandler := handlers.NewDraftsHandler(persistent, registry)
	recoveryHandler := handlers.NewRecoveryHandler(recoverySvc, consolidateSvc)
	backupHandler := handlers.NewBackupHandler(backupSvc)
	validateHandler := handlers.NewValidateHandler(validator)
	systemHandler := handlers.NewSystemHandler(cfg, registry, persistent, session, diskUsageFn(cfg.DataDir))
	maintenanceHandler := handlers.NewMaintenanceHandler(sweepSvc)

	// deps присваивается только при работающем dephealth: типизированный
	// nil-указатель внутри интерфейса неотличим от настроенной проверки
	var healthDeps handlers.DependencyHealthChecker
	if dephealthSvc != nil {
		healthDeps = dephealthSvc
	}
	healthHandler := handlers.NewHealthHandlerFull(cfg.DataDir, cfg.WALDir, healthDeps)
	metricsHandler := server.NewMetricsHandler()

	// Единый API handler
	apiHandler := handlers.NewAPIHandler(
		draftsHandler,
		recoveryHandler,
		backupHandler,
		validateHandler,
		systemHandler,
		maintenanceHandler,
		healthHandler,
		metricsHandler,
	)

	// 9. Middleware: метрики, логирование, JWT-аутентификация
	middlewares := []func(http.Handler) http.Handler{
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	}

	if cfg.JWKSUrl != "" {
		jwtAuth, jwtErr := middleware.NewJWTAuth(middleware.JWTAuthConfig{
			JWKSURL:         cfg.JWKSUrl,
			CACertPath:      cfg.JWKSCACert,
			ClientTimeout:   cfg.JWKSClientTimeout,
			RefreshInterval: cfg.JWKSRefreshInterval,
			JWTLeeway:       cfg.JWTLeeway,
		}, logger)
		if jwtErr != nil {
			// JWT недоступен — запускаем без аутентификации (для разработки)
			logger.Warn("JWT JWKS недоступен, запуск без аутентификации",
				slog.String("jwks_url", cfg.JWKSUrl),
				slog.String("error", jwtErr.Error()),
			)
		} else {
			middlewares = append(middlewares, server.JWTAuthWithExclusions(
				jwtAuth.Middleware(),
				"/health", "/metrics", "/api/v1/info",
			))
			logger.Info("JWT аутентификация настроена",
				slog.String("jwks_url", cfg.JWKSUrl),
			)
		}
	} else {
		logger.Warn("DK_JWKS_URL не задан, запуск без аутентификации")
	}

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, middlewares...)

	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// --- Graceful shutdown фоновых процессов ---
	logger.Info("Остановка фоновых процессов...")

	sweepSvc.Stop()
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Draft Keeper остановлен")
}

// updateStorageMetrics обновляет Prometheus метрики хранилищ.
func updateStorageMetrics(engines ...*storage.Engine) {
	ctx := context.Background()
	for _, engine := range engines {
		info := engine.Info(ctx)
		middleware.StorageKeys.WithLabelValues(engine.Name()).Set(float64(info.TotalKeys))
		middleware.StorageUsedBytes.WithLabelValues(engine.Name()).Set(float64(info.TotalSize))
	}
}

// diskUsageFn возвращает функцию для получения информации об ёмкости диска.
func diskUsageFn(dataDir string) handlers.DiskUsageFunc {
	return func() (int64, int64, int64, error) {
		return getDiskUsage(dataDir)
	}
}
