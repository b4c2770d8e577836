package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/simurgh-post/simurgh/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDutyEstimator_Estimate(t *testing.T) {
	var received DutyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/estimate", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"duty":     1200,
			"tax":      800,
			"total":    2000,
			"currency": "USD",
			"status":   "ok",
		})
	}))
	defer server.Close()

	svc := NewDutyEstimator(&config.DutyConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
		Timeout: 5 * time.Second,
	})

	estimate, err := svc.Estimate(context.Background(), DutyRequest{
		OriginCountry:      "DE",
		DestinationCountry: "US",
		CustomsValueMinor:  50000,
		WeightKg:           2.5,
		Currency:           "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), estimate.DutyMinorUnits)
	assert.Equal(t, int64(800), estimate.TaxMinorUnits)
	assert.Equal(t, int64(2000), estimate.TotalMinorUnits)
	assert.Equal(t, "USD", estimate.Currency)

	assert.Equal(t, "US", received.DestinationCountry)
	assert.Equal(t, int64(50000), received.CustomsValueMinor)
}

func TestDutyEstimator_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewDutyEstimator(&config.DutyConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
		Timeout: 5 * time.Second,
	})

	_, err := svc.Estimate(context.Background(), DutyRequest{DestinationCountry: "US"})
	assert.Error(t, err)
}

func TestDutyEstimator_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "unsupported_destination"})
	}))
	defer server.Close()

	svc := NewDutyEstimator(&config.DutyConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
		Timeout: 5 * time.Second,
	})

	_, err := svc.Estimate(context.Background(), DutyRequest{DestinationCountry: "XX"})
	assert.Error(t, err)
}

func TestMockDutyEstimator_RecordsCalls(t *testing.T) {
	mock := NewMockDutyEstimator(&DutyEstimate{TotalMinorUnits: 500, Currency: "USD"}, nil)

	estimate, err := mock.Estimate(context.Background(), DutyRequest{DestinationCountry: "FR"})
	require.NoError(t, err)
	assert.Equal(t, int64(500), estimate.TotalMinorUnits)
	require.Len(t, mock.Requests, 1)
	assert.Equal(t, "FR", mock.Requests[0].Request.DestinationCountry)

	failing := NewMockDutyEstimator(nil, errors.New("provider down"))
	_, err = failing.Estimate(context.Background(), DutyRequest{})
	assert.Error(t, err)
}
