// sweeper.go — сервис фоновой очистки хранилищ.
//
// Sweeper периодически выполняет по обоим хранилищам:
//  1. Удаление записей старше порога устарелости (DK_CLEANUP_STALENESS)
//  2. Удаление записей с истёкшим TTL (не дожидаясь ленивого чтения)
//  3. Обновление gauge-метрик занятости хранилищ
//
// Запускается как горутина с периодическим тикером (DK_SWEEP_INTERVAL).

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cedo-platform/draft-keeper/internal/storage"
)

// Prometheus метрики sweeper
var (
	// sweepRunsTotal — количество проходов очистки по исходу.
	sweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedo_dk_sweep_runs_total",
		Help: "Общее количество проходов фоновой очистки",
	}, []string{"result"})

	// sweepRemovedTotal — количество удалённых записей по причинам.
	sweepRemovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedo_dk_sweep_removed_total",
		Help: "Общее количество записей, удалённых фоновой очисткой",
	}, []string{"reason"})

	// sweepDurationSeconds — длительность прохода очистки.
	sweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cedo_dk_sweep_duration_seconds",
		Help:    "Длительность прохода фоновой очистки в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})

	// storageRecords / storageBytes — занятость хранилищ, обновляется
	// после каждого прохода.
	storageRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cedo_dk_storage_records",
		Help: "Текущее количество записей в хранилище",
	}, []string{"store"})

	storageBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cedo_dk_storage_bytes",
		Help: "Текущий суммарный размер записей хранилища в байтах",
	}, []string{"store"})
)

// SweepResult — результат одного прохода очистки.
type SweepResult struct {
	// StaleRemoved — удалено записей старше порога устарелости
	StaleRemoved int
	// ExpiredRemoved — удалено записей с истёкшим TTL
	ExpiredRemoved int
	// Failures — записей, которые удалить не удалось
	Failures int
	// Duration — длительность выполнения
	Duration time.Duration
}

// SweepService — сервис фоновой очистки хранилищ.
type SweepService struct {
	engines  []*storage.Engine
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex // защита от параллельного запуска
	inProcess bool       // проход в процессе выполнения
	cancel    context.CancelFunc
}

// NewSweepService создаёт сервис очистки для набора хранилищ.
func NewSweepService(engines []*storage.Engine, interval time.Duration, logger *slog.Logger) *SweepService {
	return &SweepService{
		engines:  engines,
		interval: interval,
		logger:   logger.With(slog.String("component", "sweeper")),
	}
}

// Start запускает фоновую горутину очистки с периодическим тикером.
// Вызывается один раз при старте приложения. Нулевой или отрицательный
// интервал отключает фоновые проходы; RunOnce через maintenance
// endpoint остаётся доступным.
func (s *SweepService) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Фоновая очистка отключена (нулевой интервал)")
		return
	}

	sctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(sctx)

	s.logger.Info("Sweeper запущен",
		slog.String("interval", s.interval.String()),
	)
}

// Stop останавливает фоновый процесс очистки.
func (s *SweepService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("Sweeper остановлен")
}

// IsInProgress возвращает true, если проход очистки выполняется.
func (s *SweepService) IsInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProcess
}

// run — основной цикл фоновой горутины.
func (s *SweepService) run(ctx context.Context) {
	// Первый проход — сразу после старта
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce выполняет один проход очистки по всем хранилищам.
// Потокобезопасен: если проход уже выполняется, возвращает nil, true.
//
// Возвращает:
//   - *SweepResult — итог прохода
//   - bool — true если проход уже выполнялся (пропуск)
func (s *SweepService) RunOnce() (*SweepResult, bool) {
	s.mu.Lock()
	if s.inProcess {
		s.mu.Unlock()
		s.logger.Warn("Очистка уже выполняется, пропуск")
		return nil, true
	}
	s.inProcess = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inProcess = false
		s.mu.Unlock()
	}()

	start := time.Now()
	result := &SweepResult{}

	s.logger.Debug("Проход очистки начат")

	ctx := context.Background()
	for _, engine := range s.engines {
		stats := engine.Sweep(ctx)
		result.StaleRemoved += stats.Stale
		result.ExpiredRemoved += stats.Expired
		result.Failures += stats.Failures

		info := engine.Info(ctx)
		storageRecords.WithLabelValues(engine.Name()).Set(float64(info.TotalKeys))
		storageBytes.WithLabelValues(engine.Name()).Set(float64(info.TotalSize))
	}

	result.Duration = time.Since(start)

	outcome := "ok"
	if result.Failures > 0 {
		outcome = "partial"
	}
	sweepRunsTotal.WithLabelValues(outcome).Inc()
	sweepRemovedTotal.WithLabelValues("stale").Add(float64(result.StaleRemoved))
	sweepRemovedTotal.WithLabelValues("expired").Add(float64(result.ExpiredRemoved))
	sweepDurationSeconds.Observe(result.Duration.Seconds())

	s.logger.Info("Проход очистки завершён",
		slog.Int("stale", result.StaleRemoved),
		slog.Int("expired", result.ExpiredRemoved),
		slog.Int("failures", result.Failures),
		slog.Duration("duration", result.Duration),
	)

	return result, false
}
