package businessflow

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func validIngestRow(weightTier float64) dto.IngestRateRow {
	return dto.IngestRateRow{
		CountryCode:     "DE",
		CountryName:     "Germany",
		Carrier:         "DHL",
		Service:         "express",
		WeightTierKg:    weightTier,
		PriceMinorUnits: 2500,
	}
}

// Validation runs before any database write, so failure paths are exercised
// without a database.
func TestIngestBatchValidation(t *testing.T) {
	ctx := context.Background()
	flow := NewIngestionFlow(nil, nil, nil, nil)

	t.Run("RejectsEmptySubmission", func(t *testing.T) {
		_, err := flow.IngestBatch(ctx, &dto.IngestBatchRequest{Source: "scraper"}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBatchEmpty))
	})

	t.Run("RejectsNilRequest", func(t *testing.T) {
		_, err := flow.IngestBatch(ctx, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBatchEmpty))
	})

	t.Run("RejectsWholeSubmissionOnOneBadRow", func(t *testing.T) {
		bad := validIngestRow(1.0)
		bad.PriceMinorUnits = -5

		_, err := flow.IngestBatch(ctx, &dto.IngestBatchRequest{
			Source: "scraper",
			Rows:   []dto.IngestRateRow{validIngestRow(0.5), bad},
		}, nil)
		require.Error(t, err)
		assert.True(t, IsRowValidation(err))

		var rve *RowValidationError
		require.True(t, errors.As(err, &rve))
		require.Len(t, rve.Issues, 1)
		assert.Equal(t, 1, rve.Issues[0].Index)
		assert.Contains(t, rve.Issues[0].Reason, "price_minor_units")
	})

	t.Run("ReportsEveryFailingRow", func(t *testing.T) {
		badCode := validIngestRow(0.5)
		badCode.CountryCode = "DEU"
		badTier := validIngestRow(0.0)
		badCarrier := validIngestRow(2.0)
		badCarrier.Carrier = "  "

		_, err := flow.IngestBatch(ctx, &dto.IngestBatchRequest{
			Source: "scraper",
			Rows:   []dto.IngestRateRow{badCode, badTier, badCarrier},
		}, nil)
		require.Error(t, err)

		var rve *RowValidationError
		require.True(t, errors.As(err, &rve))
		assert.Len(t, rve.Issues, 3)
	})

	t.Run("RejectsDuplicateKeysWithinSubmission", func(t *testing.T) {
		first := validIngestRow(1.0)
		dup := validIngestRow(1.0)
		dup.CountryCode = "de" // normalization must not hide the duplicate
		dup.PriceMinorUnits = 9999

		_, err := flow.IngestBatch(ctx, &dto.IngestBatchRequest{
			Source: "scraper",
			Rows:   []dto.IngestRateRow{first, dup},
		}, nil)
		require.Error(t, err)

		var rve *RowValidationError
		require.True(t, errors.As(err, &rve))
		require.Len(t, rve.Issues, 1)
		assert.Equal(t, 1, rve.Issues[0].Index)
		assert.Contains(t, rve.Issues[0].Reason, "duplicate of row 0")
	})

}

func TestIngestFromWorkbook(t *testing.T) {
	ctx := context.Background()
	flow := NewIngestionFlow(nil, nil, nil, nil)

	buildWorkbook := func(t *testing.T, rows [][]any) []byte {
		t.Helper()
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{
			"country_code", "country_name", "carrier", "service", "weight_tier_kg", "price_minor_units", "transit_days",
		}))
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))
		return buf.Bytes()
	}

	t.Run("RejectsGarbageBytes", func(t *testing.T) {
		_, err := flow.IngestFromWorkbook(ctx, []byte("not a workbook"), "upload", nil)
		require.Error(t, err)
		assert.False(t, IsRowValidation(err))
	})

	t.Run("RejectsRowWithBadWeightTier", func(t *testing.T) {
		workbook := buildWorkbook(t, [][]any{
			{"DE", "Germany", "DHL", "express", "not-a-number", "2500", "2-3 days"},
		})

		_, err := flow.IngestFromWorkbook(ctx, workbook, "upload", nil)
		require.Error(t, err)
		assert.True(t, IsRowValidation(err))

		var rve *RowValidationError
		require.True(t, errors.As(err, &rve))
		require.Len(t, rve.Issues, 1)
		assert.Contains(t, rve.Issues[0].Reason, "invalid weight tier")
	})

	t.Run("RejectsRowWithTooFewColumns", func(t *testing.T) {
		workbook := buildWorkbook(t, [][]any{
			{"DE", "Germany", "DHL"},
		})

		_, err := flow.IngestFromWorkbook(ctx, workbook, "upload", nil)
		require.Error(t, err)
		assert.True(t, IsRowValidation(err))
	})

	t.Run("EmptyWorkbookIsAnEmptySubmission", func(t *testing.T) {
		workbook := buildWorkbook(t, nil)

		_, err := flow.IngestFromWorkbook(ctx, workbook, "upload", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBatchEmpty))
	})
}

func TestParseWorkbookRow(t *testing.T) {
	t.Run("ParsesFullRow", func(t *testing.T) {
		row, err := parseWorkbookRow([]string{"DE", "Germany", "DHL", "express", "1.5", "2500", "2-3 days"})
		require.NoError(t, err)
		assert.Equal(t, "DE", row.CountryCode)
		assert.Equal(t, 1.5, row.WeightTierKg)
		assert.Equal(t, int64(2500), row.PriceMinorUnits)
		require.NotNil(t, row.TransitDaysText)
		assert.Equal(t, "2-3 days", *row.TransitDaysText)
	})

	t.Run("TransitColumnIsOptional", func(t *testing.T) {
		row, err := parseWorkbookRow([]string{"DE", "Germany", "DHL", "express", "1.5", "2500"})
		require.NoError(t, err)
		assert.Nil(t, row.TransitDaysText)
	})

	t.Run("BlankTransitBecomesNil", func(t *testing.T) {
		row, err := parseWorkbookRow([]string{"DE", "Germany", "DHL", "express", "1.5", "2500", "   "})
		require.NoError(t, err)
		assert.Nil(t, row.TransitDaysText)
	})

	t.Run("RejectsBadPrice", func(t *testing.T) {
		_, err := parseWorkbookRow([]string{"DE", "Germany", "DHL", "express", "1.5", "25.50"})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "invalid price"))
	})
}

func TestValidateRows(t *testing.T) {
	t.Run("PassesCleanRows", func(t *testing.T) {
		rows := []dto.IngestRateRow{validIngestRow(0.5), validIngestRow(1.0)}
		assert.Empty(t, validateRows(rows))
	})

	t.Run("TrimsBeforeChecking", func(t *testing.T) {
		row := validIngestRow(1.0)
		row.CountryCode = " de "
		row.Carrier = " DHL "
		assert.Empty(t, validateRows([]dto.IngestRateRow{row}))
	})

	t.Run("TransitTextNotPartOfKey", func(t *testing.T) {
		a := validIngestRow(1.0)
		a.TransitDaysText = utils.ToPtr("2-3 days")
		b := validIngestRow(1.0)
		b.TransitDaysText = utils.ToPtr("4-5 days")

		issues := validateRows([]dto.IngestRateRow{a, b})
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Reason, "duplicate")
	})
}
