package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillableWeightKg(t *testing.T) {
	// 30x20x15 at 2kg: volumetric (30*20*15)/5000 = 1.8, actual wins
	assert.Equal(t, 2.00, BillableWeightKg(30, 20, 15, 2))

	// Bulky, light parcel: volumetric wins
	// 50x40x30 = 60000 / 5000 = 12
	assert.Equal(t, 12.00, BillableWeightKg(50, 40, 30, 3.5))

	// Rounding is half-up at the second decimal
	// 25x25x25 = 15625 / 5000 = 3.125 -> 3.13
	assert.Equal(t, 3.13, BillableWeightKg(25, 25, 25, 1))
}

func TestRoundHalfUp2(t *testing.T) {
	assert.Equal(t, 1.01, RoundHalfUp2(1.005))
	assert.Equal(t, 1.0, RoundHalfUp2(1.004))
	assert.Equal(t, 2.35, RoundHalfUp2(2.345))
	assert.Equal(t, 0.0, RoundHalfUp2(0))

	// halves whose binary form falls just short of .5 must still round up
	assert.Equal(t, 0.34, RoundHalfUp2(0.335))
	assert.Equal(t, 8.29, RoundHalfUp2(8.285))

	// values genuinely below the half stay down
	assert.Equal(t, 1.0, RoundHalfUp2(1.0049))

	assert.Equal(t, -1.01, RoundHalfUp2(-1.005))
}

func TestApplyMultiplier(t *testing.T) {
	assert.Equal(t, int64(1500), ApplyMultiplier(1000, 1.5))
	assert.Equal(t, int64(1000), ApplyMultiplier(1000, 1))
	assert.Equal(t, int64(1100), ApplyMultiplier(1000, 1.1))
	assert.Equal(t, int64(333), ApplyMultiplier(303, 1.1))
}

func TestApplyMultiplierNoDrift(t *testing.T) {
	// The same multiplication must land on the same cent every time;
	// float dollar math would wander across 10k iterations.
	for i := 0; i < 10000; i++ {
		if got := ApplyMultiplier(1000, 1.5); got != 1500 {
			t.Fatalf("iteration %d: got %d, want 1500", i, got)
		}
	}
}
