// system.go — обработчик GET /api/v1/info (информация о демоне).
// Публичный endpoint (без аутентификации) для service discovery и мониторинга.
package handlers

import (
	"net/http"

	"github.com/cedo-platform/draft-keeper/internal/api/generated"
	"github.com/cedo-platform/draft-keeper/internal/config"
	"github.com/cedo-platform/draft-keeper/internal/domain/model"
	"github.com/cedo-platform/draft-keeper/internal/schema"
	"github.com/cedo-platform/draft-keeper/internal/storage"
)

// DiskUsageFunc — функция получения информации об ёмкости диска
// с данными. Возвращает total, used, available в байтах.
type DiskUsageFunc func() (total, used, available int64, err error)

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	cfg        *config.Config
	registry   *schema.Registry
	persistent *storage.Engine
	session    *storage.Engine
	diskUsage  DiskUsageFunc
}

// NewSystemHandler создаёт обработчик системных endpoints.
// diskUsage — функция получения ёмкости диска (nil — без секции disk).
func NewSystemHandler(
	cfg *config.Config,
	registry *schema.Registry,
	persistent, session *storage.Engine,
	diskUsage DiskUsageFunc,
) *SystemHandler {
	return &SystemHandler{
		cfg:        cfg,
		registry:   registry,
		persistent: persistent,
		session:    session,
		diskUsage:  diskUsage,
	}
}

// GetInfo обрабатывает GET /api/v1/info.
// Без аутентификации. Возвращает диагностику обоих хранилищ.
func (h *SystemHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := generated.InfoResponse{
		InstanceId:  h.cfg.InstanceID,
		Service:     serviceName,
		Version:     config.Version,
		BaseSection: schema.BaseSection,
		Sections:    h.registry.Sections(),
		Stores: generated.InfoStores{
			Persistent: storageToAPIInfo(h.persistent.Info(r.Context())),
			Session:    storageToAPIInfo(h.session.Info(r.Context())),
		},
	}

	// Секция disk — опциональная: ошибка statfs её просто опускает
	if h.diskUsage != nil {
		if total, used, available, err := h.diskUsage(); err == nil && total > 0 {
			resp.Disk = &generated.DiskUsage{
				TotalBytes:  total,
				UsedBytes:   used,
				FreeBytes:   available,
				UsedPercent: float64(used) / float64(total) * 100,
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// storageToAPIInfo преобразует диагностику движка в API-формат.
func storageToAPIInfo(info *model.StorageInfo) generated.StorageInfo {
	return generated.StorageInfo{
		TotalKeys:      info.TotalKeys,
		TotalSize:      info.TotalSize,
		PercentageUsed: info.PercentageUsed,
		MaxSize:        info.MaxSize,
		AvailableSpace: info.AvailableSpace,
		IsHealthy:      info.IsHealthy,
		FormDataKeys:   info.FormDataKeys,
		FileDataKeys:   info.FileDataKeys,
	}
}
