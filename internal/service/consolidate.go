// ConsolidateService — сборка канонического черновика перед отправкой.
// Единственное место подсистемы, где отказ фатален: без валидной
// базовой секции остальные данные черновика не имеют смысла.

package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/cedo-platform/draft-keeper/internal/schema"
)

// MissingBaseDataError — базовая секция не восстановлена ни из одного
// кандидата. Единственная фатальная ошибка подсистемы восстановления.
type MissingBaseDataError struct {
	MissingFields []string
}

func (e *MissingBaseDataError) Error() string {
	if len(e.MissingFields) == 0 {
		return "отсутствуют обязательные данные базовой секции"
	}
	return fmt.Sprintf("отсутствуют обязательные данные базовой секции: %s",
		strings.Join(e.MissingFields, ", "))
}

// ConsolidatedDraft — итог консолидации: канонический черновик и
// источник, из которого восстановлена базовая секция.
type ConsolidatedDraft struct {
	Draft      map[string]any
	BaseSource string
}

// ConsolidateService — консолидация черновика.
type ConsolidateService struct {
	recovery *RecoveryService
	backup   *BackupService
	logger   *slog.Logger
}

// NewConsolidateService создаёт сервис консолидации.
func NewConsolidateService(recovery *RecoveryService, backup *BackupService, logger *slog.Logger) *ConsolidateService {
	return &ConsolidateService{
		recovery: recovery,
		backup:   backup,
		logger:   logger.With(slog.String("component", "consolidate")),
	}
}

// Consolidate восстанавливает базовую секцию через оркестратор и
// возвращает канонический черновик: поля остальных секций, поверх
// которых накладываются восстановленные базовые поля (при коллизии
// ключей базовые выигрывают). Успешная сборка попутно создаёт
// резервную копию; её сбой не фатален. Невосстановимая базовая
// секция — *MissingBaseDataError.
func (s *ConsolidateService) Consolidate(ctx context.Context, draftID string, otherSections, currentBase, fallbackBase map[string]any) (*ConsolidatedDraft, error) {
	result := s.recovery.RecoverSection(ctx, draftID, schema.BaseSection, currentBase, fallbackBase)
	if !result.IsValid {
		s.logger.Warn("Консолидация невозможна: базовая секция не восстановлена",
			slog.Any("missing_fields", result.MissingFields),
		)
		return nil, &MissingBaseDataError{MissingFields: result.MissingFields}
	}

	merged := make(map[string]any, len(otherSections)+len(result.Data))
	maps.Copy(merged, otherSections)
	maps.Copy(merged, result.Data)

	if err := s.backup.Create(ctx, merged); err != nil {
		// Сбой бэкапа не блокирует консолидацию
		s.logger.Debug("Консолидация продолжается без резервной копии",
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Черновик консолидирован",
		slog.String("base_source", result.Source),
		slog.Int("fields", len(merged)),
	)
	return &ConsolidatedDraft{Draft: merged, BaseSource: result.Source}, nil
}
