// Package models contains domain entities and business models for the shipping rate platform
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/simurgh-post/simurgh/utils"
	"gorm.io/gorm"
)

// ServiceSetting controls which (carrier, service) pairs are customer-facing
// and how they are ordered in quote responses. Edited directly by admins;
// consulted, never mutated, by the quote flow.
// Table: service_settings. Unique by (carrier, service).
type ServiceSetting struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_service_settings_uuid" json:"uuid"`

	Carrier     string `gorm:"size:100;not null;uniqueIndex:uk_service_settings_pair" json:"carrier"`
	Service     string `gorm:"size:100;not null;uniqueIndex:uk_service_settings_pair" json:"service"`
	DisplayName string `gorm:"size:255;not null" json:"display_name"`

	IsActive  *bool `gorm:"default:true;index:idx_service_settings_is_active" json:"is_active"`
	SortOrder int   `gorm:"not null;default:0;index:idx_service_settings_sort_order" json:"sort_order"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for the model
func (ServiceSetting) TableName() string {
	return "service_settings"
}

// BeforeCreate is called before creating a new record
func (s *ServiceSetting) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (s *ServiceSetting) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = utils.UTCNow()
	return nil
}

// ServiceSettingFilter represents filter criteria for service setting queries
type ServiceSettingFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Carrier  *string
	Service  *string
	IsActive *bool
}
