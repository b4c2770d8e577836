package dto

import "time"

// IngestRateRow is one proposed rate row inside an ingestion payload
type IngestRateRow struct {
	CountryCode     string  `json:"country_code" validate:"required,len=2"`
	CountryName     string  `json:"country_name" validate:"required"`
	Carrier         string  `json:"carrier" validate:"required"`
	Service         string  `json:"service" validate:"required"`
	WeightTierKg    float64 `json:"weight_tier_kg" validate:"required,gt=0"`
	PriceMinorUnits int64   `json:"price_minor_units" validate:"required,gt=0"`
	TransitDaysText *string `json:"transit_days_text,omitempty"`
}

// IngestBatchRequest represents a scraped rate sheet submission.
// The whole submission is rejected if any row fails validation.
type IngestBatchRequest struct {
	Rows        []IngestRateRow `json:"rows" validate:"required,min=1,dive"`
	Source      string          `json:"source" validate:"required"`
	CountryCode *string         `json:"country_code,omitempty" validate:"omitempty,len=2"`
	ScrapedAt   *time.Time      `json:"scraped_at,omitempty"`
}

type IngestBatchResponse struct {
	Message   string `json:"message"`
	BatchID   uint   `json:"batch_id"`
	BatchUUID string `json:"batch_uuid"`
	Accepted  int    `json:"accepted"`
}

// RowValidationIssue pinpoints a failing row in a rejected submission
type RowValidationIssue struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// AdminListBatchesFilter represents optional batch list filters
type AdminListBatchesFilter struct {
	Status    *string    `json:"status,omitempty"`
	Source    *string    `json:"source,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// AdminBatchItem is one batch in the admin list
type AdminBatchItem struct {
	ID             uint       `json:"id"`
	UUID           string     `json:"uuid"`
	CountryCode    *string    `json:"country_code,omitempty"`
	TotalPrices    int        `json:"total_prices"`
	ApprovedPrices *int       `json:"approved_prices,omitempty"`
	Status         string     `json:"status"`
	Source         string     `json:"source"`
	Notes          *string    `json:"notes,omitempty"`
	ScrapedAt      *time.Time `json:"scraped_at,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	ProcessedBy    *uint      `json:"processed_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type AdminListBatchesResponse struct {
	Message string           `json:"message"`
	Items   []AdminBatchItem `json:"items"`
}

type BatchRowsResponse struct {
	Message string       `json:"message"`
	BatchID uint         `json:"batch_id"`
	Items   []RateRowDTO `json:"items"`
}

// ApproveBatchRequest promotes a pending batch's rows to active rates.
// ReplaceExisting controls collision behavior: true supersedes current
// active rows atomically, false skips colliding keys and reports them.
type ApproveBatchRequest struct {
	BatchID         uint    `json:"-"`
	ReplaceExisting bool    `json:"replace_existing"`
	Comment         *string `json:"comment,omitempty"`
}

type ApproveBatchResponse struct {
	Message       string `json:"message"`
	ApprovedCount int    `json:"approved_count"`
	SkippedCount  int    `json:"skipped_count"`
}

type RejectBatchRequest struct {
	BatchID uint   `json:"-"`
	Reason  string `json:"reason" validate:"required"`
}

type RejectBatchResponse struct {
	Message string `json:"message"`
}
