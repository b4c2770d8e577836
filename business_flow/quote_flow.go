// Package businessflow contains the core business logic and use cases for rate workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/simurgh-post/simurgh/app/dto"
	"github.com/simurgh-post/simurgh/app/services"
	"github.com/simurgh-post/simurgh/config"
	"github.com/simurgh-post/simurgh/repository"
	"github.com/simurgh-post/simurgh/utils"
)

// QuoteFlow computes customer-facing shipping quotes from the active rate set.
// It reads rates and visibility settings directly from the database on every
// request; only duty estimates, which come from a slow external collaborator,
// are cached.
type QuoteFlow interface {
	ComputeQuote(ctx context.Context, req *dto.ComputeQuoteRequest) (*dto.ComputeQuoteResponse, error)
}

// QuoteFlowImpl implements the quote business flow
type QuoteFlowImpl struct {
	rowRepo     repository.RateRowRepository
	settingRepo repository.ServiceSettingRepository
	dutyService services.DutyEstimator
	redisClient redis.UniversalClient
	quoteConfig config.QuoteConfig
}

// NewQuoteFlow creates a new quote flow instance
func NewQuoteFlow(
	rowRepo repository.RateRowRepository,
	settingRepo repository.ServiceSettingRepository,
	dutyService services.DutyEstimator,
	redisClient redis.UniversalClient,
	quoteConfig config.QuoteConfig,
) QuoteFlow {
	return &QuoteFlowImpl{
		rowRepo:     rowRepo,
		settingRepo: settingRepo,
		dutyService: dutyService,
		redisClient: redisClient,
		quoteConfig: quoteConfig,
	}
}

// ComputeQuote builds one offer per visible (carrier, service) lane that has
// an active tier covering the billable weight. Duty estimation is additive
// and best-effort: when the collaborator fails, the response still carries
// the shipping offers, with duties marked unavailable.
func (s *QuoteFlowImpl) ComputeQuote(ctx context.Context, req *dto.ComputeQuoteRequest) (*dto.ComputeQuoteResponse, error) {
	if req == nil {
		return nil, NewBusinessError("COMPUTE_QUOTE_FAILED", "Request is required", nil)
	}

	destination := strings.ToUpper(strings.TrimSpace(req.DestinationCountry))
	if len(destination) != 2 {
		return nil, NewBusinessError("COMPUTE_QUOTE_FAILED", "Destination country must be a 2-letter ISO code", ErrDestinationRequired)
	}
	if req.LengthCm <= 0 || req.WidthCm <= 0 || req.HeightCm <= 0 || req.WeightKg <= 0 {
		return nil, NewBusinessError("COMPUTE_QUOTE_FAILED", "Dimensions and weight must be positive", ErrNonPositiveDimensions)
	}

	multiplier := 1.0
	if req.Multiplier != nil {
		if *req.Multiplier <= 0 {
			return nil, NewBusinessError("COMPUTE_QUOTE_FAILED", "Multiplier must be positive", ErrMultiplierOutOfRange)
		}
		multiplier = *req.Multiplier
	}

	volumetric := utils.RoundHalfUp2(utils.VolumetricWeightKg(req.LengthCm, req.WidthCm, req.HeightCm))
	billable := utils.BillableWeightKg(req.LengthCm, req.WidthCm, req.HeightCm, req.WeightKg)

	settings, err := s.settingRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("COMPUTE_QUOTE_FAILED", "Failed to load service settings", err)
	}

	offers := make([]dto.QuoteOffer, 0, len(settings))
	for _, setting := range settings {
		row, err := s.rowRepo.ActiveTierFor(ctx, destination, setting.Carrier, setting.Service, billable)
		if err != nil {
			return nil, NewBusinessError("COMPUTE_QUOTE_FAILED", "Failed to look up rates", err)
		}
		if row == nil {
			continue // no covering tier for this lane
		}

		offers = append(offers, dto.QuoteOffer{
			Carrier:              row.Carrier,
			Service:              row.Service,
			DisplayName:          setting.DisplayName,
			WeightTierKg:         row.WeightTierKg,
			BasePriceMinorUnits:  row.PriceMinorUnits,
			Multiplier:           multiplier,
			TotalPriceMinorUnits: utils.ApplyMultiplier(row.PriceMinorUnits, multiplier),
			Currency:             s.currency(),
			TransitDaysText:      row.TransitDaysText,
		})
	}

	resp := &dto.ComputeQuoteResponse{
		Message:            "Quote computed successfully",
		DestinationCountry: destination,
		VolumetricWeightKg: volumetric,
		BillableWeightKg:   billable,
		Offers:             offers,
	}

	// Duties apply to cross-border shipments only
	if req.CustomsValueMinor != nil && destination != strings.ToUpper(s.quoteConfig.OriginCountry) {
		resp.Duties = s.estimateDuties(ctx, destination, *req.CustomsValueMinor, billable)
	}

	return resp, nil
}

// estimateDuties consults the duty collaborator through a short-lived cache.
// Any failure degrades to Available=false rather than failing the quote.
func (s *QuoteFlowImpl) estimateDuties(ctx context.Context, destination string, customsValueMinor int64, billableKg float64) *dto.DutyBreakdown {
	unavailable := &dto.DutyBreakdown{Available: false}

	cacheKey := fmt.Sprintf("duty:%s:%d:%.2f", destination, customsValueMinor, billableKg)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var breakdown dto.DutyBreakdown
			if err := json.Unmarshal([]byte(cached), &breakdown); err == nil {
				return &breakdown
			}
		}
	}

	if s.dutyService == nil {
		return unavailable
	}

	estimate, err := s.dutyService.Estimate(ctx, services.DutyRequest{
		OriginCountry:      s.quoteConfig.OriginCountry,
		DestinationCountry: destination,
		CustomsValueMinor:  customsValueMinor,
		WeightKg:           billableKg,
		Currency:           s.currency(),
	})
	if err != nil || estimate == nil {
		log.Printf("duty estimation unavailable for %s: %v", destination, err)
		return unavailable
	}

	breakdown := &dto.DutyBreakdown{
		Available:       true,
		DutyMinorUnits:  estimate.DutyMinorUnits,
		TaxMinorUnits:   estimate.TaxMinorUnits,
		TotalMinorUnits: estimate.TotalMinorUnits,
		Currency:        estimate.Currency,
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(breakdown); err == nil {
			ttl := s.quoteConfig.DutyCacheTTL
			if ttl <= 0 {
				ttl = 15 * time.Minute
			}
			_ = s.redisClient.Set(ctx, cacheKey, payload, ttl).Err()
		}
	}

	return breakdown
}

func (s *QuoteFlowImpl) currency() string {
	if s.quoteConfig.Currency != "" {
		return s.quoteConfig.Currency
	}
	return utils.DefaultCurrency
}
