// Пакет service — бизнес-логика draft-keeper.
// RecoveryService — оркестратор восстановления секций черновика по
// упорядоченному списку кандидатов с коротким замыканием на первом
// валидном. Порядок кандидатов — контракт: текущие данные, in-memory
// копия вызывающего кода, исторические ключи постоянного хранилища,
// сессионный ключ, удалённый Draft API. Восстановление никогда не
// возвращает ошибку: сетевые сбои и повреждённые данные — это
// неуспешный кандидат, а не отказ операции.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cedo-platform/draft-keeper/internal/domain/model"
	"github.com/cedo-platform/draft-keeper/internal/domain/recovery"
	"github.com/cedo-platform/draft-keeper/internal/draftapi"
	"github.com/cedo-platform/draft-keeper/internal/schema"
	"github.com/cedo-platform/draft-keeper/internal/storage"
	"github.com/cedo-platform/draft-keeper/internal/validate"
)

// Prometheus-метрики восстановления.
var (
	recoveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedo_dk_recoveries_total",
		Help: "Количество завершённых восстановлений по источникам (none — исчерпание).",
	}, []string{"source"})

	recoveryCandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedo_dk_recovery_candidates_total",
		Help: "Количество проверенных кандидатов восстановления по источникам и исходу валидации.",
	}, []string{"source", "valid"})
)

// defaultFetchTimeout — таймаут удалённого кандидата по умолчанию.
const defaultFetchTimeout = 5 * time.Second

// RecoveryService — оркестратор восстановления секций.
type RecoveryService struct {
	persistent   *storage.Engine
	session      *storage.Engine
	registry     *schema.Registry
	validator    *validate.Validator
	drafts       *draftapi.Client
	cache        *draftapi.Cache
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewRecoveryService создаёт оркестратор восстановления.
// drafts и cache могут быть nil: удалённый кандидат тогда всегда
// неуспешен (деградация без Draft API).
func NewRecoveryService(
	persistent, session *storage.Engine,
	registry *schema.Registry,
	validator *validate.Validator,
	drafts *draftapi.Client,
	cache *draftapi.Cache,
	fetchTimeout time.Duration,
	logger *slog.Logger,
) *RecoveryService {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &RecoveryService{
		persistent:   persistent,
		session:      session,
		registry:     registry,
		validator:    validator,
		drafts:       drafts,
		cache:        cache,
		fetchTimeout: fetchTimeout,
		logger:       logger.With(slog.String("component", "recovery")),
	}
}

// candidate — один кандидат восстановления: тег источника и ленивое
// чтение данных. found=false означает «данных нет» (ключ отсутствует,
// JSON повреждён, сеть недоступна) — кандидат всё равно проходит
// валидацию с пустыми данными.
type candidate struct {
	source string
	load   func(ctx context.Context) (data map[string]any, found bool)
}

// RecoverSection восстанавливает секцию черновика. Кандидаты
// опрашиваются строго по порядку; первый, прошедший валидацию,
// немедленно возвращается со своим тегом источника. При исчерпании
// возвращается {isValid:false, source:"none"} с отсутствующими полями
// последней валидации.
func (s *RecoveryService) RecoverSection(ctx context.Context, draftID, section string, current, fallback map[string]any) model.RecoveryResult {
	sec, ok := s.registry.Section(section)
	if !ok {
		s.logger.Warn("Восстановление незарегистрированной секции",
			slog.String("section", section),
		)
		m := recovery.NewMachine(0)
		s.step(m.Exhaust())
		return model.RecoveryResult{IsValid: false, Source: model.SourceNone, MissingFields: []string{}}
	}

	candidates := s.buildCandidates(sec, draftID, current, fallback)
	m := recovery.NewMachine(len(candidates))

	var last model.ValidationResult
	for i, cand := range candidates {
		if i == 0 {
			s.step(m.Begin(cand.source))
		} else {
			s.step(m.Next(cand.source))
		}
		s.logger.Debug("Проверка кандидата восстановления",
			slog.String("section", section),
			slog.String("state", m.State().String()),
			slog.String("source", cand.source),
		)

		data, found := cand.load(ctx)
		if !found {
			s.logger.Debug("Кандидат без данных",
				slog.String("section", section),
				slog.String("source", cand.source),
			)
		}

		last = s.validator.Section(sec, data)
		recoveryCandidatesTotal.WithLabelValues(cand.source, strconv.FormatBool(last.IsValid)).Inc()

		if last.IsValid {
			s.step(m.Recover(cand.source))
			recoveriesTotal.WithLabelValues(cand.source).Inc()
			s.logger.Info("Секция восстановлена",
				slog.String("section", section),
				slog.String("source", cand.source),
				slog.Int("candidate", i),
			)
			return model.RecoveryResult{
				IsValid:       true,
				Data:          data,
				Source:        cand.source,
				MissingFields: []string{},
			}
		}
	}

	s.step(m.Exhaust())
	recoveriesTotal.WithLabelValues(model.SourceNone).Inc()
	s.logger.Warn("Кандидаты восстановления исчерпаны",
		slog.String("section", section),
		slog.Any("missing_fields", last.MissingFields),
	)
	return model.RecoveryResult{
		IsValid:       false,
		Source:        model.SourceNone,
		MissingFields: last.MissingFields,
	}
}

// buildCandidates формирует упорядоченный список кандидатов секции.
func (s *RecoveryService) buildCandidates(sec schema.SectionSchema, draftID string, current, fallback map[string]any) []candidate {
	candidates := []candidate{
		{source: model.SourceCurrent, load: func(context.Context) (map[string]any, bool) {
			return current, len(current) > 0
		}},
		// In-memory копия вызывающего кода: отдельного тега в контракте
		// источников нет, репортится как current
		{source: model.SourceCurrent, load: func(context.Context) (map[string]any, bool) {
			return fallback, len(fallback) > 0
		}},
	}

	for _, key := range sec.LegacyKeys {
		candidates = append(candidates, candidate{
			source: model.SourceLocalPrefix + key,
			load: func(ctx context.Context) (map[string]any, bool) {
				var data map[string]any
				if !s.persistent.Get(ctx, key, &data) {
					return nil, false
				}
				return data, true
			},
		})
	}

	candidates = append(candidates, candidate{
		source: model.SourceSession,
		load: func(ctx context.Context) (map[string]any, bool) {
			var data map[string]any
			if !s.session.Get(ctx, sec.SessionKey, &data) {
				return nil, false
			}
			return data, true
		},
	})

	candidates = append(candidates, candidate{
		source: model.SourceDraftAPI,
		load: func(ctx context.Context) (map[string]any, bool) {
			return s.loadRemote(ctx, draftID, sec.Name)
		},
	})

	return candidates
}

// loadRemote читает секцию из Draft API через LRU-кэш черновиков.
// Любой сбой (нет клиента, нет draftID, сеть, не-2xx, повреждённый
// ответ) — отсутствие данных.
func (s *RecoveryService) loadRemote(ctx context.Context, draftID, section string) (map[string]any, bool) {
	if s.drafts == nil || draftID == "" {
		return nil, false
	}

	if s.cache != nil {
		if draft, ok := s.cache.Get(draftID); ok {
			return draft.Section(section)
		}
	}

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	draft, err := s.drafts.GetDraft(fctx, draftID)
	if err != nil {
		s.logger.Warn("Удалённый кандидат недоступен",
			slog.String("draft_id", draftID),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	if s.cache != nil {
		s.cache.Set(draftID, draft)
	}
	return draft.Section(section)
}

// step логирует невозможный по построению переход автомата.
func (s *RecoveryService) step(err error) {
	if err != nil {
		s.logger.Error("Недопустимый переход автомата восстановления",
			slog.String("error", err.Error()),
		)
	}
}
