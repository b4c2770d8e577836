// Package businessflow contains the core business logic and use cases for rate workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/repository"
	"github.com/simurgh-post/simurgh/utils"
	"gorm.io/gorm"
)

// ServiceSettingFlow manages which (carrier, service) pairs appear in quotes
// and their display order.
type ServiceSettingFlow interface {
	ListSettings(ctx context.Context, activeOnly bool) (*dto.ListServiceSettingsResponse, error)
	CreateSetting(ctx context.Context, req *dto.CreateServiceSettingRequest, adminID uint, metadata *ClientMetadata) (*dto.ServiceSettingResponse, error)
	UpdateSetting(ctx context.Context, req *dto.UpdateServiceSettingRequest, adminID uint, metadata *ClientMetadata) (*dto.ServiceSettingResponse, error)
	DeleteSetting(ctx context.Context, settingID uint, adminID uint, metadata *ClientMetadata) error
}

// ServiceSettingFlowImpl implements the service setting business flow
type ServiceSettingFlowImpl struct {
	settingRepo repository.ServiceSettingRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewServiceSettingFlow creates a new service setting flow instance
func NewServiceSettingFlow(
	settingRepo repository.ServiceSettingRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ServiceSettingFlow {
	return &ServiceSettingFlowImpl{
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// ListSettings returns settings ordered by sort_order. With activeOnly it
// returns only customer-visible services, which is what the public quote
// page consumes.
func (s *ServiceSettingFlowImpl) ListSettings(ctx context.Context, activeOnly bool) (*dto.ListServiceSettingsResponse, error) {
	var settings []*models.ServiceSetting
	var err error
	if activeOnly {
		settings, err = s.settingRepo.ListActive(ctx)
	} else {
		settings, err = s.settingRepo.ByFilter(ctx, models.ServiceSettingFilter{}, "sort_order ASC, id ASC", 0, 0)
	}
	if err != nil {
		return nil, NewBusinessError("LIST_SERVICE_SETTINGS_FAILED", "Failed to list service settings", err)
	}

	items := make([]dto.ServiceSettingItem, 0, len(settings))
	for _, setting := range settings {
		items = append(items, ToServiceSettingItem(*setting))
	}

	return &dto.ListServiceSettingsResponse{
		Message: "Service settings retrieved successfully",
		Items:   items,
	}, nil
}

// CreateSetting registers a new (carrier, service) pair. The pair is unique;
// a second registration fails rather than silently merging.
func (s *ServiceSettingFlowImpl) CreateSetting(ctx context.Context, req *dto.CreateServiceSettingRequest, adminID uint, metadata *ClientMetadata) (*dto.ServiceSettingResponse, error) {
	if req == nil {
		return nil, NewBusinessError("CREATE_SERVICE_SETTING_FAILED", "Request is required", nil)
	}

	carrier := strings.TrimSpace(req.Carrier)
	service := strings.TrimSpace(req.Service)
	displayName := strings.TrimSpace(req.DisplayName)
	if carrier == "" || service == "" || displayName == "" {
		return nil, NewBusinessError("CREATE_SERVICE_SETTING_FAILED", "Carrier, service and display name are required", nil)
	}

	setting := &models.ServiceSetting{
		Carrier:     carrier,
		Service:     service,
		DisplayName: displayName,
		IsActive:    utils.ToPtr(true),
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		setting.IsActive = req.IsActive
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.settingRepo.ByCarrierService(txCtx, carrier, service)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrServiceSettingExists
		}

		if err := s.settingRepo.Save(txCtx, setting); err != nil {
			return err
		}

		desc := fmt.Sprintf("Service setting created for %s/%s", carrier, service)
		return saveAuditLog(txCtx, s.auditRepo, &adminID, models.AuditActionServiceSettingChanged, desc, metadata, map[string]any{
			"setting_id": setting.ID,
			"carrier":    carrier,
			"service":    service,
			"operation":  "create",
		}, true, nil)
	})
	if err != nil {
		if errors.Is(err, ErrServiceSettingExists) {
			return nil, NewBusinessError("CREATE_SERVICE_SETTING_FAILED", "Setting already exists for this carrier and service", err)
		}
		return nil, NewBusinessError("CREATE_SERVICE_SETTING_FAILED", "Failed to create service setting", err)
	}

	return &dto.ServiceSettingResponse{
		Message: "Service setting created",
		Setting: ToServiceSettingItem(*setting),
	}, nil
}

// UpdateSetting changes display name, visibility or sort order. The
// (carrier, service) pair itself is immutable.
func (s *ServiceSettingFlowImpl) UpdateSetting(ctx context.Context, req *dto.UpdateServiceSettingRequest, adminID uint, metadata *ClientMetadata) (*dto.ServiceSettingResponse, error) {
	if req == nil || req.SettingID == 0 {
		return nil, NewBusinessError("UPDATE_SERVICE_SETTING_FAILED", "setting_id is required", nil)
	}
	if req.DisplayName == nil && req.IsActive == nil && req.SortOrder == nil {
		return nil, NewBusinessError("UPDATE_SERVICE_SETTING_FAILED", "At least one field must be provided", nil)
	}

	var updated models.ServiceSetting

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		setting, err := s.settingRepo.ByID(txCtx, req.SettingID)
		if err != nil {
			return err
		}
		if setting == nil {
			return ErrServiceSettingNotFound
		}

		if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) != "" {
			setting.DisplayName = strings.TrimSpace(*req.DisplayName)
		}
		if req.IsActive != nil {
			setting.IsActive = req.IsActive
		}
		if req.SortOrder != nil {
			setting.SortOrder = *req.SortOrder
		}

		if err := s.settingRepo.Update(txCtx, *setting); err != nil {
			return err
		}
		updated = *setting

		desc := fmt.Sprintf("Service setting updated for %s/%s", setting.Carrier, setting.Service)
		return saveAuditLog(txCtx, s.auditRepo, &adminID, models.AuditActionServiceSettingChanged, desc, metadata, map[string]any{
			"setting_id": setting.ID,
			"operation":  "update",
		}, true, nil)
	})
	if err != nil {
		if errors.Is(err, ErrServiceSettingNotFound) {
			return nil, NewBusinessError("UPDATE_SERVICE_SETTING_FAILED", "Service setting not found", err)
		}
		return nil, NewBusinessError("UPDATE_SERVICE_SETTING_FAILED", "Failed to update service setting", err)
	}

	return &dto.ServiceSettingResponse{
		Message: "Service setting updated",
		Setting: ToServiceSettingItem(updated),
	}, nil
}

// DeleteSetting removes a pair from the visibility table. Active rates for
// the pair remain in place but stop appearing in quotes.
func (s *ServiceSettingFlowImpl) DeleteSetting(ctx context.Context, settingID uint, adminID uint, metadata *ClientMetadata) error {
	if settingID == 0 {
		return NewBusinessError("DELETE_SERVICE_SETTING_FAILED", "setting_id is required", nil)
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		setting, err := s.settingRepo.ByID(txCtx, settingID)
		if err != nil {
			return err
		}
		if setting == nil {
			return ErrServiceSettingNotFound
		}

		if err := s.settingRepo.Delete(txCtx, settingID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Service setting deleted for %s/%s", setting.Carrier, setting.Service)
		return saveAuditLog(txCtx, s.auditRepo, &adminID, models.AuditActionServiceSettingChanged, desc, metadata, map[string]any{
			"setting_id": setting.ID,
			"operation":  "delete",
		}, true, nil)
	})
	if err != nil {
		if errors.Is(err, ErrServiceSettingNotFound) {
			return NewBusinessError("DELETE_SERVICE_SETTING_FAILED", "Service setting not found", err)
		}
		return NewBusinessError("DELETE_SERVICE_SETTING_FAILED", "Failed to delete service setting", err)
	}

	return nil
}
