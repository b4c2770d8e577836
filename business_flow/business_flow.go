// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"

	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/repository"
	"github.com/simurgh-post/simurgh/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToRateRowDTO converts a rate row model to its admin-facing DTO
func ToRateRowDTO(row models.RateRow) dto.RateRowDTO {
	return dto.RateRowDTO{
		ID:                   row.ID,
		UUID:                 row.UUID.String(),
		CountryCode:          row.CountryCode,
		CountryName:          row.CountryName,
		Carrier:              row.Carrier,
		Service:              row.Service,
		WeightTierKg:         row.WeightTierKg,
		PriceMinorUnits:      row.PriceMinorUnits,
		TransitDaysText:      row.TransitDaysText,
		Status:               row.Status.String(),
		IsVisibleToCustomers: utils.IsTrue(row.IsVisibleToCustomers),
		BatchID:              row.BatchID,
		ApprovedAt:           row.ApprovedAt,
		ApprovedBy:           row.ApprovedBy,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}

// ToBatchItem converts a batch model to its admin list DTO
func ToBatchItem(batch models.RateBatch) dto.AdminBatchItem {
	return dto.AdminBatchItem{
		ID:             batch.ID,
		UUID:           batch.UUID.String(),
		CountryCode:    batch.CountryCode,
		TotalPrices:    batch.TotalPrices,
		ApprovedPrices: batch.ApprovedPrices,
		Status:         batch.Status.String(),
		Source:         batch.Source,
		Notes:          batch.Notes,
		ScrapedAt:      batch.ScrapedAt,
		ProcessedAt:    batch.ProcessedAt,
		ProcessedBy:    batch.ProcessedBy,
		CreatedAt:      batch.CreatedAt,
	}
}

// ToServiceSettingItem converts a service setting model to its DTO
func ToServiceSettingItem(setting models.ServiceSetting) dto.ServiceSettingItem {
	return dto.ServiceSettingItem{
		ID:          setting.ID,
		UUID:        setting.UUID.String(),
		Carrier:     setting.Carrier,
		Service:     setting.Service,
		DisplayName: setting.DisplayName,
		IsActive:    utils.IsTrue(setting.IsActive),
		SortOrder:   setting.SortOrder,
		CreatedAt:   setting.CreatedAt,
		UpdatedAt:   setting.UpdatedAt,
	}
}

// saveAuditLog writes an audit row. Failures are returned to the caller so
// that transactional flows roll back together with the change they describe.
func saveAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, adminID *uint, action string, description string, metadata *ClientMetadata, extra map[string]any, success bool, errorMessage *string) error {
	var ip, requestID *string
	if metadata != nil {
		if metadata.IPAddress != "" {
			ip = &metadata.IPAddress
		}
		if metadata.RequestID != "" {
			requestID = &metadata.RequestID
		}
	}

	var raw json.RawMessage
	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			raw = b
		}
	}

	entry := &models.AuditLog{
		AdminID:      adminID,
		Action:       action,
		Description:  &description,
		IPAddress:    ip,
		RequestID:    requestID,
		Metadata:     raw,
		Success:      &success,
		ErrorMessage: errorMessage,
		CreatedAt:    utils.UTCNow(),
	}

	return auditRepo.Save(ctx, entry)
}
