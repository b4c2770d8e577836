package dto

// ComputeQuoteRequest carries everything the quote calculation needs.
// Customer context (multiplier) travels as an explicit parameter, never as
// ambient session state.
type ComputeQuoteRequest struct {
	DestinationCountry string   `json:"destination_country" validate:"required,len=2"`
	LengthCm           float64  `json:"length_cm" validate:"required,gt=0"`
	WidthCm            float64  `json:"width_cm" validate:"required,gt=0"`
	HeightCm           float64  `json:"height_cm" validate:"required,gt=0"`
	WeightKg           float64  `json:"weight_kg" validate:"required,gt=0"`
	Multiplier         *float64 `json:"multiplier,omitempty" validate:"omitempty,gt=0"`
	CustomsValueMinor  *int64   `json:"customs_value_minor,omitempty" validate:"omitempty,gt=0"`
}

// QuoteOffer is one eligible (carrier, service) result. Base and total are
// reported separately so estimated parts are never blended into actuals.
type QuoteOffer struct {
	Carrier              string  `json:"carrier"`
	Service              string  `json:"service"`
	DisplayName          string  `json:"display_name"`
	WeightTierKg         float64 `json:"weight_tier_kg"`
	BasePriceMinorUnits  int64   `json:"base_price_minor_units"`
	Multiplier           float64 `json:"multiplier"`
	TotalPriceMinorUnits int64   `json:"total_price_minor_units"`
	Currency             string  `json:"currency"`
	TransitDaysText      *string `json:"transit_days_text,omitempty"`
}

// DutyBreakdown is the additive customs estimate. Available=false means the
// duty collaborator failed or declined; the shipping price stands alone.
type DutyBreakdown struct {
	Available       bool   `json:"available"`
	DutyMinorUnits  int64  `json:"duty_minor_units,omitempty"`
	TaxMinorUnits   int64  `json:"tax_minor_units,omitempty"`
	TotalMinorUnits int64  `json:"total_minor_units,omitempty"`
	Currency        string `json:"currency,omitempty"`
}

type ComputeQuoteResponse struct {
	Message            string         `json:"message"`
	DestinationCountry string         `json:"destination_country"`
	VolumetricWeightKg float64        `json:"volumetric_weight_kg"`
	BillableWeightKg   float64        `json:"billable_weight_kg"`
	Offers             []QuoteOffer   `json:"offers"`
	Duties             *DutyBreakdown `json:"duties,omitempty"`
}
