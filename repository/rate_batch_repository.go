package repository

import (
	"context"
	"errors"

	"github.com/simurgh-post/simurgh/models"
	"gorm.io/gorm"
)

// RateBatchRepositoryImpl implements RateBatchRepository
type RateBatchRepositoryImpl struct {
	*BaseRepository[models.RateBatch, models.RateBatchFilter]
}

// NewRateBatchRepository creates a new repository for ingestion batches
func NewRateBatchRepository(db *gorm.DB) RateBatchRepository {
	return &RateBatchRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RateBatch, models.RateBatchFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *RateBatchRepositoryImpl) applyFilter(db *gorm.DB, filter models.RateBatchFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CountryCode != nil {
		db = db.Where("country_code = ?", *filter.CountryCode)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Source != nil {
		db = db.Where("source = ?", *filter.Source)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves batches based on filter criteria
func (r *RateBatchRepositoryImpl) ByFilter(ctx context.Context, filter models.RateBatchFilter, orderBy string, limit, offset int) ([]*models.RateBatch, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RateBatch{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.RateBatch
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of batches matching the filter
func (r *RateBatchRepositoryImpl) Count(ctx context.Context, filter models.RateBatchFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RateBatch{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any batch matching the filter exists
func (r *RateBatchRepositoryImpl) Exists(ctx context.Context, filter models.RateBatchFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByUUID retrieves a batch by its UUID
func (r *RateBatchRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.RateBatch, error) {
	db := r.getDB(ctx)

	var batch models.RateBatch
	err := db.Where("uuid = ?", uuid).Last(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// Update persists changes to an existing batch
func (r *RateBatchRepositoryImpl) Update(ctx context.Context, batch models.RateBatch) error {
	db := r.getDB(ctx)
	return db.Save(&batch).Error
}
