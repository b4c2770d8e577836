package dto

import "time"

type CreateServiceSettingRequest struct {
	Carrier     string `json:"carrier" validate:"required"`
	Service     string `json:"service" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	IsActive    *bool  `json:"is_active,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

type UpdateServiceSettingRequest struct {
	SettingID   uint    `json:"-"`
	DisplayName *string `json:"display_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

type ServiceSettingItem struct {
	ID          uint      `json:"id"`
	UUID        string    `json:"uuid"`
	Carrier     string    `json:"carrier"`
	Service     string    `json:"service"`
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ServiceSettingResponse struct {
	Message string             `json:"message"`
	Setting ServiceSettingItem `json:"setting"`
}

type ListServiceSettingsResponse struct {
	Message string               `json:"message"`
	Items   []ServiceSettingItem `json:"items"`
}
