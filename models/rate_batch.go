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

// BatchStatus represents the status of an ingestion batch
type BatchStatus string

const (
	BatchStatusPending  BatchStatus = "pending"
	BatchStatusApproved BatchStatus = "approved"
	BatchStatusRejected BatchStatus = "rejected"
)

// String returns the string representation of the status
func (s BatchStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s BatchStatus) Valid() bool {
	switch s {
	case BatchStatusPending, BatchStatusApproved, BatchStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is final. Terminal batches are
// immutable; re-processing must fail, not silently no-op.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusApproved || s == BatchStatusRejected
}

// Scan implements the sql.Scanner interface for BatchStatus
func (s *BatchStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = BatchStatus(v)
	case []byte:
		*s = BatchStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into BatchStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for BatchStatus
func (s BatchStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid BatchStatus: %s", s)
	}
	return string(s), nil
}

// RateBatch records one ingestion event: a staged set of candidate rate rows
// reviewed and promoted (or rejected) as a unit.
type RateBatch struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_rate_batches_uuid" json:"uuid"`

	// CountryCode is nil when a batch spans countries
	CountryCode    *string     `gorm:"size:2;index:idx_rate_batches_country_code" json:"country_code,omitempty"`
	TotalPrices    int         `gorm:"not null;default:0" json:"total_prices"`
	ApprovedPrices *int        `json:"approved_prices,omitempty"`
	Status         BatchStatus `gorm:"type:rate_batch_status;not null;default:'pending';index:idx_rate_batches_status" json:"status"`

	Source string  `gorm:"size:255;not null" json:"source"`
	Notes  *string `gorm:"type:text" json:"notes,omitempty"`

	ScrapedAt   *time.Time `json:"scraped_at,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy *uint      `json:"processed_by,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_rate_batches_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Rows []RateRow `gorm:"foreignKey:BatchID" json:"rows,omitempty"`
}

// TableName returns the table name for the model
func (RateBatch) TableName() string {
	return "rate_batches"
}

// BeforeCreate is called before creating a new record
func (b *RateBatch) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BatchStatusPending
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (b *RateBatch) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = utils.UTCNow()
	return nil
}

// CanTransitionTo checks if the batch can transition to the given status.
// Both approved and rejected are terminal; nothing leaves pending twice.
func (b *RateBatch) CanTransitionTo(newStatus BatchStatus) bool {
	if b.Status != BatchStatusPending {
		return false
	}
	return newStatus == BatchStatusApproved || newStatus == BatchStatusRejected
}

// GetStatusDisplayName returns a human-readable status name
func (b *RateBatch) GetStatusDisplayName() string {
	switch b.Status {
	case BatchStatusPending:
		return "Pending Review"
	case BatchStatusApproved:
		return "Approved"
	case BatchStatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// RateBatchFilter represents filter criteria for batch queries
type RateBatchFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CountryCode   *string
	Status        *BatchStatus
	Source        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
