// Package models contains domain entities and business models for the shipping rate platform
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simurgh-post/simurgh/utils"
	"gorm.io/gorm"
)

// RateRowStatus represents the lifecycle status of a rate row
type RateRowStatus string

const (
	RateRowStatusPending  RateRowStatus = "pending"
	RateRowStatusActive   RateRowStatus = "active"
	RateRowStatusDisabled RateRowStatus = "disabled"
)

// String returns the string representation of the status
func (s RateRowStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s RateRowStatus) Valid() bool {
	switch s {
	case RateRowStatusPending, RateRowStatusActive, RateRowStatusDisabled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RateRowStatus
func (s *RateRowStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = RateRowStatus(v)
	case []byte:
		*s = RateRowStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into RateRowStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for RateRowStatus
func (s RateRowStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid RateRowStatus: %s", s)
	}
	return string(s), nil
}

// PromotionKey identifies the uniqueness domain for active rate rows:
// at most one active row may exist per key at any time.
type PromotionKey struct {
	CountryCode string
	Carrier     string
	Service     string
	WeightTier  float64
}

// RateRow is a priced offer for one weight tier of a (country, carrier,
// service) lane. The partial unique index uk_rate_rows_active_key enforces
// the single-active-row invariant at the database level, so two concurrent
// promotions of the same key cannot both commit.
type RateRow struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_rate_rows_uuid" json:"uuid"`

	CountryCode  string  `gorm:"size:2;not null;uniqueIndex:uk_rate_rows_active_key,where:status = 'active';index:idx_rate_rows_country_code" json:"country_code"`
	CountryName  string  `gorm:"size:255;not null" json:"country_name"`
	Carrier      string  `gorm:"size:100;not null;uniqueIndex:uk_rate_rows_active_key,where:status = 'active'" json:"carrier"`
	Service      string  `gorm:"size:100;not null;uniqueIndex:uk_rate_rows_active_key,where:status = 'active'" json:"service"`
	WeightTierKg float64 `gorm:"type:numeric(8,2);not null;uniqueIndex:uk_rate_rows_active_key,where:status = 'active';index:idx_rate_rows_weight_tier" json:"weight_tier_kg"`

	PriceMinorUnits int64   `gorm:"not null" json:"price_minor_units"`
	TransitDaysText *string `gorm:"size:255" json:"transit_days_text,omitempty"`

	Status               RateRowStatus `gorm:"type:rate_row_status;not null;default:'pending';index:idx_rate_rows_status" json:"status"`
	IsVisibleToCustomers *bool         `gorm:"default:true" json:"is_visible_to_customers"`

	// BatchID is a non-enforced back-reference: a batch may be deleted after
	// promotion without cascading to live rates.
	BatchID    *uint      `gorm:"index:idx_rate_rows_batch_id" json:"batch_id,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *uint      `json:"approved_by,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_rate_rows_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for the model
func (RateRow) TableName() string {
	return "rate_rows"
}

// BeforeCreate is called before creating a new record
func (r *RateRow) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RateRowStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (r *RateRow) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = utils.UTCNow()
	return nil
}

// Key returns the promotion key of the row
func (r *RateRow) Key() PromotionKey {
	return PromotionKey{
		CountryCode: r.CountryCode,
		Carrier:     r.Carrier,
		Service:     r.Service,
		WeightTier:  r.WeightTierKg,
	}
}

// Covers reports whether this tier applies to the given billable weight.
// Tier breakpoints are inclusive upper bounds ("up to and including").
func (r *RateRow) Covers(billableKg float64) bool {
	return r.WeightTierKg >= billableKg
}

// RateRowFilter represents filter criteria for rate row queries
type RateRowFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CountryCode   *string
	Carrier       *string
	Service       *string
	Status        *RateRowStatus
	BatchID       *uint
	Visible       *bool
	MinWeightTier *float64
	MaxWeightTier *float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
