package dto

import "time"

// RateRowDTO is the admin-facing view of a rate row
type RateRowDTO struct {
	ID                   uint       `json:"id"`
	UUID                 string     `json:"uuid"`
	CountryCode          string     `json:"country_code"`
	CountryName          string     `json:"country_name"`
	Carrier              string     `json:"carrier"`
	Service              string     `json:"service"`
	WeightTierKg         float64    `json:"weight_tier_kg"`
	PriceMinorUnits      int64      `json:"price_minor_units"`
	TransitDaysText      *string    `json:"transit_days_text,omitempty"`
	Status               string     `json:"status"`
	IsVisibleToCustomers bool       `json:"is_visible_to_customers"`
	BatchID              *uint      `json:"batch_id,omitempty"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	ApprovedBy           *uint      `json:"approved_by,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ListActiveRatesFilter represents optional active-rate list filters
type ListActiveRatesFilter struct {
	CountryCode *string  `json:"country_code,omitempty"`
	Carrier     *string  `json:"carrier,omitempty"`
	MinWeight   *float64 `json:"min_weight,omitempty"`
	MaxWeight   *float64 `json:"max_weight,omitempty"`
}

type ListActiveRatesResponse struct {
	Message string       `json:"message"`
	Items   []RateRowDTO `json:"items"`
}

// UpdateRateRequest is a direct admin correction, independent of the batch flow
type UpdateRateRequest struct {
	RateID               uint    `json:"-"`
	PriceMinorUnits      *int64  `json:"price_minor_units,omitempty" validate:"omitempty,gt=0"`
	TransitDaysText      *string `json:"transit_days_text,omitempty"`
	IsVisibleToCustomers *bool   `json:"is_visible_to_customers,omitempty"`
}

type UpdateRateResponse struct {
	Message string     `json:"message"`
	Rate    RateRowDTO `json:"rate"`
}

type DeleteRateResponse struct {
	Message string `json:"message"`
}
