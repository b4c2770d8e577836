package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchStatusTransitions(t *testing.T) {
	t.Run("PendingCanBeApprovedOrRejected", func(t *testing.T) {
		batch := &RateBatch{Status: BatchStatusPending}
		assert.True(t, batch.CanTransitionTo(BatchStatusApproved))
		assert.True(t, batch.CanTransitionTo(BatchStatusRejected))
	})

	t.Run("TerminalStatesAreImmutable", func(t *testing.T) {
		approved := &RateBatch{Status: BatchStatusApproved}
		assert.False(t, approved.CanTransitionTo(BatchStatusRejected))
		assert.False(t, approved.CanTransitionTo(BatchStatusApproved))
		assert.False(t, approved.CanTransitionTo(BatchStatusPending))

		rejected := &RateBatch{Status: BatchStatusRejected}
		assert.False(t, rejected.CanTransitionTo(BatchStatusApproved))
	})

	t.Run("Terminal", func(t *testing.T) {
		assert.False(t, BatchStatusPending.Terminal())
		assert.True(t, BatchStatusApproved.Terminal())
		assert.True(t, BatchStatusRejected.Terminal())
	})

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, BatchStatusPending.Valid())
		assert.False(t, BatchStatus("archived").Valid())
	})
}

func TestRateRowCovers(t *testing.T) {
	row := &RateRow{WeightTierKg: 1.0}

	assert.True(t, row.Covers(0.5))
	assert.True(t, row.Covers(1.0), "tier boundary is an inclusive upper bound")
	assert.False(t, row.Covers(1.01))
}

func TestRateRowKey(t *testing.T) {
	a := &RateRow{CountryCode: "DE", Carrier: "DHL", Service: "express", WeightTierKg: 1.0, PriceMinorUnits: 2500}
	b := &RateRow{CountryCode: "DE", Carrier: "DHL", Service: "express", WeightTierKg: 1.0, PriceMinorUnits: 9999}
	c := &RateRow{CountryCode: "DE", Carrier: "DHL", Service: "express", WeightTierKg: 2.0}

	assert.Equal(t, a.Key(), b.Key(), "price is not part of the promotion key")
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestRateRowStatus(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.True(t, RateRowStatusPending.Valid())
		assert.True(t, RateRowStatusActive.Valid())
		assert.True(t, RateRowStatusDisabled.Valid())
		assert.False(t, RateRowStatus("archived").Valid())
	})

	t.Run("ScanAndValue", func(t *testing.T) {
		var s RateRowStatus
		assert.NoError(t, s.Scan("active"))
		assert.Equal(t, RateRowStatusActive, s)

		v, err := RateRowStatusActive.Value()
		assert.NoError(t, err)
		assert.Equal(t, "active", v)

		_, err = RateRowStatus("bogus").Value()
		assert.Error(t, err)
	})
}
