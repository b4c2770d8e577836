// Package businessflow contains the core business logic and use cases for rate workflows
package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/repository"
	"github.com/simurgh-post/simurgh/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// IngestionFlow stages scraped rate sheets as pending batches for admin review.
// Staged rows never affect customer quotes until a batch is approved.
type IngestionFlow interface {
	IngestBatch(ctx context.Context, req *dto.IngestBatchRequest, metadata *ClientMetadata) (*dto.IngestBatchResponse, error)
	IngestFromWorkbook(ctx context.Context, workbook []byte, source string, metadata *ClientMetadata) (*dto.IngestBatchResponse, error)
}

// RowValidationError rejects a whole submission and pinpoints every failing
// row. A partially valid sheet is never partially staged.
type RowValidationError struct {
	Issues []dto.RowValidationIssue
}

func (e *RowValidationError) Error() string {
	return fmt.Sprintf("%d row(s) failed validation", len(e.Issues))
}

func (e *RowValidationError) Unwrap() error {
	return ErrRowValidation
}

// IngestionFlowImpl implements the ingestion business flow
type IngestionFlowImpl struct {
	batchRepo repository.RateBatchRepository
	rowRepo   repository.RateRowRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewIngestionFlow creates a new ingestion flow instance
func NewIngestionFlow(
	batchRepo repository.RateBatchRepository,
	rowRepo repository.RateRowRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) IngestionFlow {
	return &IngestionFlowImpl{
		batchRepo: batchRepo,
		rowRepo:   rowRepo,
		auditRepo: auditRepo,
		db:        db,
	}
}

// IngestBatch validates a scraped submission and stages it as a pending batch.
// Validation runs before any write: either every row is staged or none is.
func (s *IngestionFlowImpl) IngestBatch(ctx context.Context, req *dto.IngestBatchRequest, metadata *ClientMetadata) (*dto.IngestBatchResponse, error) {
	if req == nil || len(req.Rows) == 0 {
		return nil, NewBusinessError("INGEST_BATCH_FAILED", "At least one row is required", ErrBatchEmpty)
	}

	issues := validateRows(req.Rows)
	if len(issues) > 0 {
		return nil, NewBusinessError("INGEST_BATCH_VALIDATION_FAILED", "Submission rejected", &RowValidationError{Issues: issues})
	}

	batch := &models.RateBatch{
		CountryCode: normalizeCountryPtr(req.CountryCode),
		TotalPrices: len(req.Rows),
		Status:      models.BatchStatusPending,
		Source:      strings.TrimSpace(req.Source),
		ScrapedAt:   req.ScrapedAt,
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.batchRepo.Save(txCtx, batch); err != nil {
			return err
		}

		rows := make([]*models.RateRow, 0, len(req.Rows))
		for _, in := range req.Rows {
			rows = append(rows, &models.RateRow{
				CountryCode:          strings.ToUpper(strings.TrimSpace(in.CountryCode)),
				CountryName:          strings.TrimSpace(in.CountryName),
				Carrier:              strings.TrimSpace(in.Carrier),
				Service:              strings.TrimSpace(in.Service),
				WeightTierKg:         in.WeightTierKg,
				PriceMinorUnits:      in.PriceMinorUnits,
				TransitDaysText:      in.TransitDaysText,
				Status:               models.RateRowStatusPending,
				IsVisibleToCustomers: utils.ToPtr(true),
				BatchID:              &batch.ID,
			})
		}
		if err := s.rowRepo.SaveBatch(txCtx, rows); err != nil {
			return err
		}

		desc := fmt.Sprintf("Batch %s ingested with %d rows from %s", batch.UUID, len(rows), batch.Source)
		return saveAuditLog(txCtx, s.auditRepo, nil, models.AuditActionBatchIngested, desc, metadata, map[string]any{
			"batch_id":     batch.ID,
			"total_prices": batch.TotalPrices,
			"source":       batch.Source,
		}, true, nil)
	})
	if err != nil {
		return nil, NewBusinessError("INGEST_BATCH_FAILED", "Failed to stage batch", err)
	}

	return &dto.IngestBatchResponse{
		Message:   "Batch staged for review",
		BatchID:   batch.ID,
		BatchUUID: batch.UUID.String(),
		Accepted:  len(req.Rows),
	}, nil
}

// IngestFromWorkbook parses an uploaded xlsx rate sheet and stages it through
// the same validation path as the JSON submission.
func (s *IngestionFlowImpl) IngestFromWorkbook(ctx context.Context, workbook []byte, source string, metadata *ClientMetadata) (*dto.IngestBatchResponse, error) {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return nil, NewBusinessError("INGEST_WORKBOOK_FAILED", "Failed to open workbook", err)
	}
	defer func() { _ = f.Close() }()

	var parsed []dto.IngestRateRow
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, NewBusinessError("INGEST_WORKBOOK_FAILED", "Failed to read sheet", err)
		}
		for i, cells := range rows {
			if i == 0 {
				continue // header
			}
			if len(cells) == 0 || strings.TrimSpace(strings.Join(cells, "")) == "" {
				continue
			}
			row, err := parseWorkbookRow(cells)
			if err != nil {
				return nil, NewBusinessError("INGEST_WORKBOOK_VALIDATION_FAILED", "Submission rejected",
					&RowValidationError{Issues: []dto.RowValidationIssue{{Index: i, Reason: err.Error()}}})
			}
			parsed = append(parsed, row)
		}
	}

	req := &dto.IngestBatchRequest{
		Rows:   parsed,
		Source: source,
	}
	return s.IngestBatch(ctx, req, metadata)
}

// Workbook columns: country_code, country_name, carrier, service,
// weight_tier_kg, price_minor_units, transit_days
func parseWorkbookRow(cells []string) (dto.IngestRateRow, error) {
	var row dto.IngestRateRow
	if len(cells) < 6 {
		return row, fmt.Errorf("expected at least 6 columns, got %d", len(cells))
	}

	row.CountryCode = strings.TrimSpace(cells[0])
	row.CountryName = strings.TrimSpace(cells[1])
	row.Carrier = strings.TrimSpace(cells[2])
	row.Service = strings.TrimSpace(cells[3])

	tier, err := strconv.ParseFloat(strings.TrimSpace(cells[4]), 64)
	if err != nil {
		return row, fmt.Errorf("invalid weight tier %q", cells[4])
	}
	row.WeightTierKg = tier

	price, err := strconv.ParseInt(strings.TrimSpace(cells[5]), 10, 64)
	if err != nil {
		return row, fmt.Errorf("invalid price %q", cells[5])
	}
	row.PriceMinorUnits = price

	if len(cells) > 6 {
		if transit := strings.TrimSpace(cells[6]); transit != "" {
			row.TransitDaysText = &transit
		}
	}

	return row, nil
}

// validateRows applies the semantic checks the struct tags cannot express:
// country code shape, positivity, and duplicate keys within the submission.
func validateRows(rows []dto.IngestRateRow) []dto.RowValidationIssue {
	var issues []dto.RowValidationIssue
	seen := make(map[models.PromotionKey]int, len(rows))

	for i, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(row.CountryCode))
		switch {
		case len(code) != 2:
			issues = append(issues, dto.RowValidationIssue{Index: i, Reason: "country_code must be a 2-letter ISO code"})
		case strings.TrimSpace(row.CountryName) == "":
			issues = append(issues, dto.RowValidationIssue{Index: i, Reason: "country_name is required"})
		case strings.TrimSpace(row.Carrier) == "":
			issues = append(issues, dto.RowValidationIssue{Index: i, Reason: "carrier is required"})
		case strings.TrimSpace(row.Service) == "":
			issues = append(issues, dto.RowValidationIssue{Index: i, Reason: "service is required"})
		case row.WeightTierKg <= 0:
			issues = append(issues, dto.RowValidationIssue{Index: i, Reason: "weight_tier_kg must be positive"})
		case row.PriceMinorUnits <= 0:
			issues = append(issues, dto.RowValidationIssue{Index: i, Reason: "price_minor_units must be positive"})
		default:
			key := models.PromotionKey{
				CountryCode: code,
				Carrier:     strings.TrimSpace(row.Carrier),
				Service:     strings.TrimSpace(row.Service),
				WeightTier:  row.WeightTierKg,
			}
			if first, dup := seen[key]; dup {
				issues = append(issues, dto.RowValidationIssue{
					Index:  i,
					Reason: fmt.Sprintf("duplicate of row %d: same country, carrier, service and weight tier", first),
				})
			} else {
				seen[key] = i
			}
		}
	}

	return issues
}

func normalizeCountryPtr(code *string) *string {
	if code == nil {
		return nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(*code))
	if normalized == "" {
		return nil
	}
	return &normalized
}
