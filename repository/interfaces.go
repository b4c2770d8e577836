// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/simurgh-post/simurgh/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// RateRowRepository defines operations for rate rows
type RateRowRepository interface {
	Repository[models.RateRow, models.RateRowFilter]
	ListByBatch(ctx context.Context, batchID uint) ([]*models.RateRow, error)
	// ActiveTierFor returns the active row with the smallest weight tier that
	// still covers billableKg for the given lane, or nil when no tier covers it.
	ActiveTierFor(ctx context.Context, countryCode, carrier, service string, billableKg float64) (*models.RateRow, error)
	ActiveKeyExists(ctx context.Context, key models.PromotionKey) (bool, error)
	// DisableActiveByKeys marks every active row matching one of the promotion
	// keys as disabled. Returns the number of rows disabled.
	DisableActiveByKeys(ctx context.Context, keys []models.PromotionKey) (int64, error)
	// ActivateRows flips the given staged rows to active and stamps approval
	// metadata. Fails on the active-key unique index if a competing promotion
	// already activated one of the keys.
	ActivateRows(ctx context.Context, ids []uint, approvedBy uint, approvedAt time.Time) error
	Update(ctx context.Context, row models.RateRow) error
	Delete(ctx context.Context, id uint) error
}

// RateBatchRepository defines operations for ingestion batches
type RateBatchRepository interface {
	Repository[models.RateBatch, models.RateBatchFilter]
	ByUUID(ctx context.Context, uuid string) (*models.RateBatch, error)
	Update(ctx context.Context, batch models.RateBatch) error
}

// ServiceSettingRepository defines operations for service visibility settings
type ServiceSettingRepository interface {
	Repository[models.ServiceSetting, models.ServiceSettingFilter]
	ByCarrierService(ctx context.Context, carrier, service string) (*models.ServiceSetting, error)
	// ListActive returns active settings ordered by sort_order.
	ListActive(ctx context.Context) ([]*models.ServiceSetting, error)
	Update(ctx context.Context, setting models.ServiceSetting) error
	Delete(ctx context.Context, id uint) error
}

// AdminRepository defines operations for admin accounts
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAdmin(ctx context.Context, adminID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
}
