// Package businessflow contains the core business logic and use cases for rate workflows
package businessflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/repository"
	"github.com/simurgh-post/simurgh/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// RateFlow handles direct admin operations on individual rate rows, outside
// the batch approval path.
type RateFlow interface {
	ListActiveRates(ctx context.Context, filter dto.ListActiveRatesFilter, limit, offset int) (*dto.ListActiveRatesResponse, error)
	UpdateRate(ctx context.Context, req *dto.UpdateRateRequest, adminID uint, metadata *ClientMetadata) (*dto.UpdateRateResponse, error)
	DeleteRate(ctx context.Context, rateID uint, adminID uint, metadata *ClientMetadata) (*dto.DeleteRateResponse, error)
	ExportActiveRates(ctx context.Context, filter dto.ListActiveRatesFilter) ([]byte, error)
}

// RateFlowImpl implements the rate administration business flow
type RateFlowImpl struct {
	rowRepo   repository.RateRowRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewRateFlow creates a new rate flow instance
func NewRateFlow(
	rowRepo repository.RateRowRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) RateFlow {
	return &RateFlowImpl{
		rowRepo:   rowRepo,
		auditRepo: auditRepo,
		db:        db,
	}
}

// ListActiveRates retrieves active rates using optional filters: country, carrier, weight range
func (s *RateFlowImpl) ListActiveRates(ctx context.Context, filter dto.ListActiveRatesFilter, limit, offset int) (*dto.ListActiveRatesResponse, error) {
	rows, err := s.rowRepo.ByFilter(ctx, activeRowFilter(filter), "country_code ASC, carrier ASC, service ASC, weight_tier_kg ASC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_RATES_FAILED", "Failed to list rates", err)
	}

	items := make([]dto.RateRowDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToRateRowDTO(*r))
	}

	return &dto.ListActiveRatesResponse{
		Message: "Rates retrieved successfully",
		Items:   items,
	}, nil
}

// UpdateRate applies a direct correction to an active rate row. Only price,
// transit text and visibility are editable; the promotion key is immutable
// so the active-key invariant cannot be bypassed from here.
func (s *RateFlowImpl) UpdateRate(ctx context.Context, req *dto.UpdateRateRequest, adminID uint, metadata *ClientMetadata) (*dto.UpdateRateResponse, error) {
	if req == nil || req.RateID == 0 {
		return nil, NewBusinessError("ADMIN_UPDATE_RATE_FAILED", "rate_id is required", nil)
	}
	if req.PriceMinorUnits == nil && req.TransitDaysText == nil && req.IsVisibleToCustomers == nil {
		return nil, NewBusinessError("ADMIN_UPDATE_RATE_FAILED", "At least one field must be provided", ErrRateUpdateRequired)
	}
	if req.PriceMinorUnits != nil && *req.PriceMinorUnits <= 0 {
		return nil, NewBusinessError("ADMIN_UPDATE_RATE_FAILED", "Price must be positive", nil)
	}

	var updated models.RateRow

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		row, err := s.rowRepo.ByID(txCtx, req.RateID)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrRateRowNotFound
		}

		changes := make(map[string]any)
		if req.PriceMinorUnits != nil {
			changes["price_minor_units"] = map[string]any{"old": row.PriceMinorUnits, "new": *req.PriceMinorUnits}
			row.PriceMinorUnits = *req.PriceMinorUnits
		}
		if req.TransitDaysText != nil {
			row.TransitDaysText = req.TransitDaysText
			changes["transit_days_text"] = *req.TransitDaysText
		}
		if req.IsVisibleToCustomers != nil {
			row.IsVisibleToCustomers = req.IsVisibleToCustomers
			changes["is_visible_to_customers"] = *req.IsVisibleToCustomers
		}

		if err := s.rowRepo.Update(txCtx, *row); err != nil {
			return err
		}
		updated = *row

		desc := fmt.Sprintf("Rate %s updated", row.UUID)
		return saveAuditLog(txCtx, s.auditRepo, &adminID, models.AuditActionRateUpdated, desc, metadata, map[string]any{
			"rate_id": row.ID,
			"changes": changes,
		}, true, nil)
	})
	if err != nil {
		if errors.Is(err, ErrRateRowNotFound) {
			return nil, NewBusinessError("ADMIN_UPDATE_RATE_FAILED", "Rate row not found", err)
		}
		return nil, NewBusinessError("ADMIN_UPDATE_RATE_FAILED", "Failed to update rate", err)
	}

	return &dto.UpdateRateResponse{
		Message: "Rate updated",
		Rate:    ToRateRowDTO(updated),
	}, nil
}

// DeleteRate removes a rate row entirely. Deleting an active row simply
// leaves its lane without a tier; quotes degrade to fewer offers.
func (s *RateFlowImpl) DeleteRate(ctx context.Context, rateID uint, adminID uint, metadata *ClientMetadata) (*dto.DeleteRateResponse, error) {
	if rateID == 0 {
		return nil, NewBusinessError("ADMIN_DELETE_RATE_FAILED", "rate_id is required", nil)
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		row, err := s.rowRepo.ByID(txCtx, rateID)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrRateRowNotFound
		}

		if err := s.rowRepo.Delete(txCtx, rateID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Rate %s deleted", row.UUID)
		return saveAuditLog(txCtx, s.auditRepo, &adminID, models.AuditActionRateDeleted, desc, metadata, map[string]any{
			"rate_id":      row.ID,
			"country_code": row.CountryCode,
			"carrier":      row.Carrier,
			"service":      row.Service,
			"weight_tier":  row.WeightTierKg,
		}, true, nil)
	})
	if err != nil {
		if errors.Is(err, ErrRateRowNotFound) {
			return nil, NewBusinessError("ADMIN_DELETE_RATE_FAILED", "Rate row not found", err)
		}
		return nil, NewBusinessError("ADMIN_DELETE_RATE_FAILED", "Failed to delete rate", err)
	}

	return &dto.DeleteRateResponse{Message: "Rate deleted"}, nil
}

// ExportActiveRates builds an xlsx workbook of the active rate set, one sheet
// per destination country, for offline review.
func (s *RateFlowImpl) ExportActiveRates(ctx context.Context, filter dto.ListActiveRatesFilter) ([]byte, error) {
	rows, err := s.rowRepo.ByFilter(ctx, activeRowFilter(filter), "country_code ASC, carrier ASC, service ASC, weight_tier_kg ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("ADMIN_EXPORT_RATES_FAILED", "Failed to list rates", err)
	}

	byCountry := make(map[string][]*models.RateRow)
	for _, r := range rows {
		byCountry[r.CountryCode] = append(byCountry[r.CountryCode], r)
	}
	countries := make([]string, 0, len(byCountry))
	for code := range byCountry {
		countries = append(countries, code)
	}
	sort.Strings(countries)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := []any{"Country Code", "Country Name", "Carrier", "Service", "Weight Tier (kg)", "Price (minor units)", "Transit Days", "Approved At"}

	for i, code := range countries {
		sheet := code
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, NewBusinessError("ADMIN_EXPORT_RATES_FAILED", "Failed to build workbook", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, NewBusinessError("ADMIN_EXPORT_RATES_FAILED", "Failed to build workbook", err)
			}
		}

		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, NewBusinessError("ADMIN_EXPORT_RATES_FAILED", "Failed to build workbook", err)
		}

		for j, r := range byCountry[code] {
			transit := ""
			if r.TransitDaysText != nil {
				transit = *r.TransitDaysText
			}
			approvedAt := ""
			if r.ApprovedAt != nil {
				approvedAt = utils.TimeToUTC(*r.ApprovedAt).Format("2006-01-02 15:04:05")
			}
			cell := fmt.Sprintf("A%d", j+2)
			values := []any{r.CountryCode, r.CountryName, r.Carrier, r.Service, r.WeightTierKg, r.PriceMinorUnits, transit, approvedAt}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, NewBusinessError("ADMIN_EXPORT_RATES_FAILED", "Failed to build workbook", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, NewBusinessError("ADMIN_EXPORT_RATES_FAILED", "Failed to write workbook", err)
	}
	return buf.Bytes(), nil
}

func activeRowFilter(filter dto.ListActiveRatesFilter) models.RateRowFilter {
	status := models.RateRowStatusActive
	rf := models.RateRowFilter{Status: &status}
	if filter.CountryCode != nil && *filter.CountryCode != "" {
		code := strings.ToUpper(strings.TrimSpace(*filter.CountryCode))
		rf.CountryCode = &code
	}
	if filter.Carrier != nil && *filter.Carrier != "" {
		rf.Carrier = filter.Carrier
	}
	if filter.MinWeight != nil {
		rf.MinWeightTier = filter.MinWeight
	}
	if filter.MaxWeight != nil {
		rf.MaxWeightTier = filter.MaxWeight
	}
	return rf
}
