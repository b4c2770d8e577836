package businessflow

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/app/services"
	"github.com/simurgh-post/simurgh/config"
	"github.com/simurgh-post/simurgh/models"
	"github.com/simurgh-post/simurgh/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRateRowRepo serves active rows from memory
type fakeRateRowRepo struct {
	rows []*models.RateRow
}

func (f *fakeRateRowRepo) ByID(ctx context.Context, id uint) (*models.RateRow, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRateRowRepo) ByFilter(ctx context.Context, filter models.RateRowFilter, orderBy string, limit, offset int) ([]*models.RateRow, error) {
	return f.rows, nil
}

func (f *fakeRateRowRepo) Save(ctx context.Context, entity *models.RateRow) error { return nil }
func (f *fakeRateRowRepo) SaveBatch(ctx context.Context, entities []*models.RateRow) error {
	return nil
}
func (f *fakeRateRowRepo) Count(ctx context.Context, filter models.RateRowFilter) (int64, error) {
	return int64(len(f.rows)), nil
}
func (f *fakeRateRowRepo) Exists(ctx context.Context, filter models.RateRowFilter) (bool, error) {
	return len(f.rows) > 0, nil
}
func (f *fakeRateRowRepo) ListByBatch(ctx context.Context, batchID uint) ([]*models.RateRow, error) {
	return nil, nil
}

func (f *fakeRateRowRepo) ActiveTierFor(ctx context.Context, countryCode, carrier, service string, billableKg float64) (*models.RateRow, error) {
	var candidates []*models.RateRow
	for _, r := range f.rows {
		if r.Status != models.RateRowStatusActive || !utils.IsTrue(r.IsVisibleToCustomers) {
			continue
		}
		if r.CountryCode != countryCode || r.Carrier != carrier || r.Service != service {
			continue
		}
		if r.Covers(billableKg) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].WeightTierKg < candidates[j].WeightTierKg
	})
	return candidates[0], nil
}

func (f *fakeRateRowRepo) ActiveKeyExists(ctx context.Context, key models.PromotionKey) (bool, error) {
	return false, nil
}
func (f *fakeRateRowRepo) DisableActiveByKeys(ctx context.Context, keys []models.PromotionKey) (int64, error) {
	return 0, nil
}
func (f *fakeRateRowRepo) ActivateRows(ctx context.Context, ids []uint, approvedBy uint, approvedAt time.Time) error {
	return nil
}
func (f *fakeRateRowRepo) Update(ctx context.Context, row models.RateRow) error { return nil }
func (f *fakeRateRowRepo) Delete(ctx context.Context, id uint) error            { return nil }

// fakeSettingRepo serves visibility settings from memory
type fakeSettingRepo struct {
	settings []*models.ServiceSetting
}

func (f *fakeSettingRepo) ByID(ctx context.Context, id uint) (*models.ServiceSetting, error) {
	return nil, nil
}
func (f *fakeSettingRepo) ByFilter(ctx context.Context, filter models.ServiceSettingFilter, orderBy string, limit, offset int) ([]*models.ServiceSetting, error) {
	return f.settings, nil
}
func (f *fakeSettingRepo) Save(ctx context.Context, entity *models.ServiceSetting) error { return nil }
func (f *fakeSettingRepo) SaveBatch(ctx context.Context, entities []*models.ServiceSetting) error {
	return nil
}
func (f *fakeSettingRepo) Count(ctx context.Context, filter models.ServiceSettingFilter) (int64, error) {
	return int64(len(f.settings)), nil
}
func (f *fakeSettingRepo) Exists(ctx context.Context, filter models.ServiceSettingFilter) (bool, error) {
	return len(f.settings) > 0, nil
}
func (f *fakeSettingRepo) ByCarrierService(ctx context.Context, carrier, service string) (*models.ServiceSetting, error) {
	for _, s := range f.settings {
		if s.Carrier == carrier && s.Service == service {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSettingRepo) ListActive(ctx context.Context) ([]*models.ServiceSetting, error) {
	var active []*models.ServiceSetting
	for _, s := range f.settings {
		if utils.IsTrue(s.IsActive) {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].SortOrder < active[j].SortOrder })
	return active, nil
}

func (f *fakeSettingRepo) Update(ctx context.Context, setting models.ServiceSetting) error {
	return nil
}
func (f *fakeSettingRepo) Delete(ctx context.Context, id uint) error { return nil }

func activeRow(country, carrier, service string, tier float64, price int64) *models.RateRow {
	return &models.RateRow{
		CountryCode:          country,
		CountryName:          "Germany",
		Carrier:              carrier,
		Service:              service,
		WeightTierKg:         tier,
		PriceMinorUnits:      price,
		Status:               models.RateRowStatusActive,
		IsVisibleToCustomers: utils.ToPtr(true),
	}
}

func visibleSetting(carrier, service string, order int) *models.ServiceSetting {
	return &models.ServiceSetting{
		Carrier:     carrier,
		Service:     service,
		DisplayName: carrier + " " + service,
		IsActive:    utils.ToPtr(true),
		SortOrder:   order,
	}
}

func newTestQuoteFlow(rows []*models.RateRow, settings []*models.ServiceSetting, duty services.DutyEstimator) QuoteFlow {
	return NewQuoteFlow(
		&fakeRateRowRepo{rows: rows},
		&fakeSettingRepo{settings: settings},
		duty,
		nil,
		config.QuoteConfig{OriginCountry: "DE", Currency: "USD"},
	)
}

func TestComputeQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("PicksSmallestCoveringTier", func(t *testing.T) {
		rows := []*models.RateRow{
			activeRow("DE", "DHL", "express", 0.5, 1500),
			activeRow("DE", "DHL", "express", 1.0, 2500),
			activeRow("DE", "DHL", "express", 2.0, 4000),
		}
		flow := newTestQuoteFlow(rows, []*models.ServiceSetting{visibleSetting("DHL", "express", 1)}, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "de",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg: 0.8,
		})
		require.NoError(t, err)
		require.Len(t, resp.Offers, 1)
		// volumetric 10*10*10/5000 = 0.2, actual 0.8 wins; 1.0 tier covers it
		assert.Equal(t, 0.8, resp.BillableWeightKg)
		assert.Equal(t, 1.0, resp.Offers[0].WeightTierKg)
		assert.Equal(t, int64(2500), resp.Offers[0].BasePriceMinorUnits)
		assert.Equal(t, "DE", resp.DestinationCountry)
	})

	t.Run("TierBoundaryIsInclusive", func(t *testing.T) {
		rows := []*models.RateRow{
			activeRow("DE", "DHL", "express", 1.0, 2500),
			activeRow("DE", "DHL", "express", 2.0, 4000),
		}
		flow := newTestQuoteFlow(rows, []*models.ServiceSetting{visibleSetting("DHL", "express", 1)}, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg: 1.0,
		})
		require.NoError(t, err)
		require.Len(t, resp.Offers, 1)
		// exactly 1.0 kg lands in the 1.0 tier, not the next one up
		assert.Equal(t, 1.0, resp.Offers[0].WeightTierKg)
	})

	t.Run("VolumetricWeightDominatesWhenLarger", func(t *testing.T) {
		rows := []*models.RateRow{
			activeRow("DE", "DHL", "express", 20.0, 30000),
		}
		flow := newTestQuoteFlow(rows, []*models.ServiceSetting{visibleSetting("DHL", "express", 1)}, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           40, WidthCm: 40, HeightCm: 40,
			WeightKg: 2.0,
		})
		require.NoError(t, err)
		// 40*40*40/5000 = 12.8 beats the 2.0 kg actual weight
		assert.Equal(t, 12.8, resp.VolumetricWeightKg)
		assert.Equal(t, 12.8, resp.BillableWeightKg)
		require.Len(t, resp.Offers, 1)
	})

	t.Run("AppliesMultiplierToMinorUnits", func(t *testing.T) {
		rows := []*models.RateRow{activeRow("DE", "DHL", "express", 5.0, 1999)}
		flow := newTestQuoteFlow(rows, []*models.ServiceSetting{visibleSetting("DHL", "express", 1)}, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg:   1.0,
			Multiplier: utils.ToPtr(1.15),
		})
		require.NoError(t, err)
		require.Len(t, resp.Offers, 1)
		// 1999 * 1.15 = 2298.85, rounds to 2299
		assert.Equal(t, int64(2299), resp.Offers[0].TotalPriceMinorUnits)
		assert.Equal(t, int64(1999), resp.Offers[0].BasePriceMinorUnits)
	})

	t.Run("MultiplierDefaultsToOne", func(t *testing.T) {
		rows := []*models.RateRow{activeRow("DE", "DHL", "express", 5.0, 1999)}
		flow := newTestQuoteFlow(rows, []*models.ServiceSetting{visibleSetting("DHL", "express", 1)}, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg: 1.0,
		})
		require.NoError(t, err)
		require.Len(t, resp.Offers, 1)
		assert.Equal(t, int64(1999), resp.Offers[0].TotalPriceMinorUnits)
		assert.Equal(t, 1.0, resp.Offers[0].Multiplier)
	})

	t.Run("SkipsLanesWithoutCoveringTier", func(t *testing.T) {
		rows := []*models.RateRow{
			activeRow("DE", "DHL", "express", 1.0, 2500),
			activeRow("DE", "UPS", "standard", 30.0, 50000),
		}
		settings := []*models.ServiceSetting{
			visibleSetting("DHL", "express", 1),
			visibleSetting("UPS", "standard", 2),
		}
		flow := newTestQuoteFlow(rows, settings, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg: 5.0,
		})
		require.NoError(t, err)
		// DHL tops out at 1.0 kg, only UPS can carry 5 kg
		require.Len(t, resp.Offers, 1)
		assert.Equal(t, "UPS", resp.Offers[0].Carrier)
	})

	t.Run("HiddenSettingsProduceNoOffers", func(t *testing.T) {
		rows := []*models.RateRow{activeRow("DE", "DHL", "express", 5.0, 2500)}
		hidden := visibleSetting("DHL", "express", 1)
		hidden.IsActive = utils.ToPtr(false)
		flow := newTestQuoteFlow(rows, []*models.ServiceSetting{hidden}, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg: 1.0,
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Offers)
	})

	t.Run("RejectsBadDestination", func(t *testing.T) {
		flow := newTestQuoteFlow(nil, nil, nil)
		_, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DEU",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg: 1.0,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDestinationRequired))
	})

	t.Run("RejectsNonPositiveDimensions", func(t *testing.T) {
		flow := newTestQuoteFlow(nil, nil, nil)
		_, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           0, WidthCm: 10, HeightCm: 10,
			WeightKg: 1.0,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNonPositiveDimensions))
	})

	t.Run("RejectsNonPositiveMultiplier", func(t *testing.T) {
		flow := newTestQuoteFlow(nil, nil, nil)
		_, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg:   1.0,
			Multiplier: utils.ToPtr(0.0),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMultiplierOutOfRange))
	})
}

func TestComputeQuoteDuties(t *testing.T) {
	ctx := context.Background()
	rows := []*models.RateRow{activeRow("FR", "DHL", "express", 5.0, 2500)}
	settings := []*models.ServiceSetting{visibleSetting("DHL", "express", 1)}

	t.Run("AddsDutyBreakdownWhenCustomsValueGiven", func(t *testing.T) {
		duty := services.NewMockDutyEstimator(&services.DutyEstimate{
			DutyMinorUnits:  300,
			TaxMinorUnits:   190,
			TotalMinorUnits: 490,
			Currency:        "USD",
		}, nil)
		flow := newTestQuoteFlow(rows, settings, duty)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "FR",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg:          1.0,
			CustomsValueMinor: utils.ToPtr(int64(10000)),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Duties)
		assert.True(t, resp.Duties.Available)
		assert.Equal(t, int64(490), resp.Duties.TotalMinorUnits)
		// shipping offer price is untouched by the duty amount
		require.Len(t, resp.Offers, 1)
		assert.Equal(t, int64(2500), resp.Offers[0].TotalPriceMinorUnits)

		require.Len(t, duty.Requests, 1)
		assert.Equal(t, "DE", duty.Requests[0].Request.OriginCountry)
		assert.Equal(t, int64(10000), duty.Requests[0].Request.CustomsValueMinor)
	})

	t.Run("DegradesWhenEstimatorFails", func(t *testing.T) {
		duty := services.NewMockDutyEstimator(nil, errors.New("provider down"))
		flow := newTestQuoteFlow(rows, settings, duty)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "FR",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg:          1.0,
			CustomsValueMinor: utils.ToPtr(int64(10000)),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Duties)
		assert.False(t, resp.Duties.Available)
		require.Len(t, resp.Offers, 1)
	})

	t.Run("NoDutiesWithoutCustomsValue", func(t *testing.T) {
		duty := services.NewMockDutyEstimator(&services.DutyEstimate{TotalMinorUnits: 490}, nil)
		flow := newTestQuoteFlow(rows, settings, duty)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "FR",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg: 1.0,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.Duties)
		assert.Empty(t, duty.Requests)
	})

	t.Run("NilEstimatorIsUnavailable", func(t *testing.T) {
		flow := newTestQuoteFlow(rows, settings, nil)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "FR",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg:          1.0,
			CustomsValueMinor: utils.ToPtr(int64(10000)),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Duties)
		assert.False(t, resp.Duties.Available)
	})

	t.Run("DomesticShipmentSkipsDuties", func(t *testing.T) {
		duty := services.NewMockDutyEstimator(&services.DutyEstimate{TotalMinorUnits: 490}, nil)
		flow := newTestQuoteFlow([]*models.RateRow{activeRow("DE", "DHL", "express", 5.0, 2500)}, settings, duty)

		resp, err := flow.ComputeQuote(ctx, &dto.ComputeQuoteRequest{
			DestinationCountry: "DE",
			LengthCm:           10, WidthCm: 10, HeightCm: 10,
			WeightKg:          1.0,
			CustomsValueMinor: utils.ToPtr(int64(10000)),
		})
		require.NoError(t, err)
		assert.Nil(t, resp.Duties)
		assert.Empty(t, duty.Requests)
	})
}
