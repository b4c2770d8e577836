package repository

import (
	"context"
	"errors"
	"time"

	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/utils"
	"gorm.io/gorm"
)

// RateRowRepositoryImpl implements RateRowRepository
type RateRowRepositoryImpl struct {
	*BaseRepository[models.RateRow, models.RateRowFilter]
}

// NewRateRowRepository creates a new repository for rate rows
func NewRateRowRepository(db *gorm.DB) RateRowRepository {
	return &RateRowRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RateRow, models.RateRowFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *RateRowRepositoryImpl) applyFilter(db *gorm.DB, filter models.RateRowFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CountryCode != nil {
		db = db.Where("country_code = ?", *filter.CountryCode)
	}
	if filter.Carrier != nil {
		db = db.Where("carrier = ?", *filter.Carrier)
	}
	if filter.Service != nil {
		db = db.Where("service = ?", *filter.Service)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.BatchID != nil {
		db = db.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.Visible != nil {
		db = db.Where("is_visible_to_customers = ?", *filter.Visible)
	}
	if filter.MinWeightTier != nil {
		db = db.Where("weight_tier_kg >= ?", *filter.MinWeightTier)
	}
	if filter.MaxWeightTier != nil {
		db = db.Where("weight_tier_kg <= ?", *filter.MaxWeightTier)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves rate rows based on filter criteria
func (r *RateRowRepositoryImpl) ByFilter(ctx context.Context, filter models.RateRowFilter, orderBy string, limit, offset int) ([]*models.RateRow, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RateRow{}), filter)

	if orderBy == "" {
		orderBy = "country_code ASC, carrier ASC, service ASC, weight_tier_kg ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.RateRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of rate rows matching the filter
func (r *RateRowRepositoryImpl) Count(ctx context.Context, filter models.RateRowFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RateRow{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any rate row matching the filter exists
func (r *RateRowRepositoryImpl) Exists(ctx context.Context, filter models.RateRowFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByBatch returns all rows staged under a batch
func (r *RateRowRepositoryImpl) ListByBatch(ctx context.Context, batchID uint) ([]*models.RateRow, error) {
	db := r.getDB(ctx)

	var rows []*models.RateRow
	err := db.Where("batch_id = ?", batchID).
		Order("country_code ASC, carrier ASC, service ASC, weight_tier_kg ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveTierFor selects the active row with the smallest weight tier covering
// billableKg. Tier breakpoints are inclusive upper bounds, so a 1.5kg parcel
// against 1/2/5kg tiers lands on the 2kg row.
func (r *RateRowRepositoryImpl) ActiveTierFor(ctx context.Context, countryCode, carrier, service string, billableKg float64) (*models.RateRow, error) {
	db := r.getDB(ctx)

	var row models.RateRow
	err := db.Where(
		"status = ? AND country_code = ? AND carrier = ? AND service = ? AND weight_tier_kg >= ? AND is_visible_to_customers = ?",
		models.RateRowStatusActive, countryCode, carrier, service, billableKg, true,
	).Order("weight_tier_kg ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ActiveKeyExists checks whether an active row already occupies the promotion key
func (r *RateRowRepositoryImpl) ActiveKeyExists(ctx context.Context, key models.PromotionKey) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.RateRow{}).Where(
		"status = ? AND country_code = ? AND carrier = ? AND service = ? AND weight_tier_kg = ?",
		models.RateRowStatusActive, key.CountryCode, key.Carrier, key.Service, key.WeightTier,
	).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DisableActiveByKeys marks active rows matching the promotion keys as disabled
func (r *RateRowRepositoryImpl) DisableActiveByKeys(ctx context.Context, keys []models.PromotionKey) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	db := r.getDB(ctx)

	var disabled int64
	for _, key := range keys {
		res := db.Model(&models.RateRow{}).Where(
			"status = ? AND country_code = ? AND carrier = ? AND service = ? AND weight_tier_kg = ?",
			models.RateRowStatusActive, key.CountryCode, key.Carrier, key.Service, key.WeightTier,
		).Updates(map[string]any{
			"status":     models.RateRowStatusDisabled,
			"updated_at": utils.UTCNow(),
		})
		if res.Error != nil {
			return disabled, res.Error
		}
		disabled += res.RowsAffected
	}
	return disabled, nil
}

// ActivateRows flips staged rows to active with approval metadata
func (r *RateRowRepositoryImpl) ActivateRows(ctx context.Context, ids []uint, approvedBy uint, approvedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	db := r.getDB(ctx)

	return db.Model(&models.RateRow{}).Where("id IN ?", ids).Updates(map[string]any{
		"status":      models.RateRowStatusActive,
		"approved_by": approvedBy,
		"approved_at": approvedAt,
		"updated_at":  utils.UTCNow(),
	}).Error
}

// Update persists changes to an existing rate row
func (r *RateRowRepositoryImpl) Update(ctx context.Context, row models.RateRow) error {
	db := r.getDB(ctx)
	return db.Save(&row).Error
}

// Delete removes a rate row
func (r *RateRowRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.RateRow{}, id).Error
}
