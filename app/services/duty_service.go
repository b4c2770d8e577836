// Package services provides external service integrations and technical concerns like duty estimation and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/simurgh-post/simurgh/config"
	"github.com/simurgh-post/simurgh/utils"
)

// DutyEstimator estimates customs duty and import tax for a shipment.
// Estimates are advisory; callers must tolerate failure and present the
// shipping price without a duty figure.
type DutyEstimator interface {
	Estimate(ctx context.Context, req DutyRequest) (*DutyEstimate, error)
}

// DutyRequest carries the shipment facts the provider needs
type DutyRequest struct {
	OriginCountry      string  `json:"origin_country"`
	DestinationCountry string  `json:"destination_country"`
	CustomsValueMinor  int64   `json:"customs_value_minor"`
	WeightKg           float64 `json:"weight_kg"`
	Currency           string  `json:"currency"`
}

// DutyEstimate is the provider's breakdown in minor units
type DutyEstimate struct {
	DutyMinorUnits  int64  `json:"duty_minor_units"`
	TaxMinorUnits   int64  `json:"tax_minor_units"`
	TotalMinorUnits int64  `json:"total_minor_units"`
	Currency        string `json:"currency"`
}

// DutyEstimatorImpl implements DutyEstimator against an HTTP provider
type DutyEstimatorImpl struct {
	config *config.DutyConfig
	client *http.Client
}

// dutyAPIResponse represents the provider's wire format
type dutyAPIResponse struct {
	Duty     int64  `json:"duty"`
	Tax      int64  `json:"tax"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// NewDutyEstimator creates a new duty estimator instance
func NewDutyEstimator(cfg *config.DutyConfig) DutyEstimator {
	return &DutyEstimatorImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Estimate calls the duty provider. A non-200 status or a non-ok payload is
// an error; the caller decides how to degrade.
func (s *DutyEstimatorImpl) Estimate(ctx context.Context, req DutyRequest) (*DutyEstimate, error) {
	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal duty request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/estimate", s.config.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send duty request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duty provider returned status %d", resp.StatusCode)
	}

	var result dutyAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode duty response: %w", err)
	}
	if result.Status != "" && result.Status != "ok" {
		return nil, fmt.Errorf("duty estimation failed: %s", result.Status)
	}

	return &DutyEstimate{
		DutyMinorUnits:  result.Duty,
		TaxMinorUnits:   result.Tax,
		TotalMinorUnits: result.Total,
		Currency:        result.Currency,
	}, nil
}

// MockDutyEstimator implements DutyEstimator for testing
type MockDutyEstimator struct {
	Requests []MockDutyCall
	Result   *DutyEstimate
	Err      error
}

// MockDutyCall records one estimation request
type MockDutyCall struct {
	Request DutyRequest
	At      time.Time
}

// NewMockDutyEstimator creates a new mock duty estimator
func NewMockDutyEstimator(estimate *DutyEstimate, err error) *MockDutyEstimator {
	return &MockDutyEstimator{
		Requests: make([]MockDutyCall, 0),
		Result:   estimate,
		Err:      err,
	}
}

func (m *MockDutyEstimator) Estimate(ctx context.Context, req DutyRequest) (*DutyEstimate, error) {
	m.Requests = append(m.Requests, MockDutyCall{Request: req, At: utils.UTCNow()})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
