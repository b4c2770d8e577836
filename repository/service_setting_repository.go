package repository

import (
	"context"
	"errors"

	"github.com/simurgh-post/simurgh/models"
	"gorm.io/gorm"
)

// ServiceSettingRepositoryImpl implements ServiceSettingRepository
type ServiceSettingRepositoryImpl struct {
	*BaseRepository[models.ServiceSetting, models.ServiceSettingFilter]
}

// NewServiceSettingRepository creates a new repository for service settings
func NewServiceSettingRepository(db *gorm.DB) ServiceSettingRepository {
	return &ServiceSettingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ServiceSetting, models.ServiceSettingFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *ServiceSettingRepositoryImpl) applyFilter(db *gorm.DB, filter models.ServiceSettingFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Carrier != nil {
		db = db.Where("carrier = ?", *filter.Carrier)
	}
	if filter.Service != nil {
		db = db.Where("service = ?", *filter.Service)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves service settings based on filter criteria
func (r *ServiceSettingRepositoryImpl) ByFilter(ctx context.Context, filter models.ServiceSettingFilter, orderBy string, limit, offset int) ([]*models.ServiceSetting, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ServiceSetting{}), filter)

	if orderBy == "" {
		orderBy = "sort_order ASC, id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ServiceSetting
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of service settings matching the filter
func (r *ServiceSettingRepositoryImpl) Count(ctx context.Context, filter models.ServiceSettingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ServiceSetting{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any service setting matching the filter exists
func (r *ServiceSettingRepositoryImpl) Exists(ctx context.Context, filter models.ServiceSettingFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByCarrierService retrieves the setting for a (carrier, service) pair
func (r *ServiceSettingRepositoryImpl) ByCarrierService(ctx context.Context, carrier, service string) (*models.ServiceSetting, error) {
	db := r.getDB(ctx)

	var setting models.ServiceSetting
	err := db.Where("carrier = ? AND service = ?", carrier, service).Last(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// ListActive returns active settings in display order
func (r *ServiceSettingRepositoryImpl) ListActive(ctx context.Context) ([]*models.ServiceSetting, error) {
	db := r.getDB(ctx)

	var rows []*models.ServiceSetting
	err := db.Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists changes to an existing setting
func (r *ServiceSettingRepositoryImpl) Update(ctx context.Context, setting models.ServiceSetting) error {
	db := r.getDB(ctx)
	return db.Save(&setting).Error
}

// Delete removes a service setting
func (r *ServiceSettingRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.ServiceSetting{}, id).Error
}
