// Package utils provides utility functions for the application.
package utils

import (
	"math"
)

// RoundHalfUp2 rounds a value to two decimal places, half away from zero.
// Used for billable weight so 1.005 becomes 1.01, never 1.00. Decimal halves
// sit just below .5 in binary (1.005 is stored as 1.00499...), so the scaled
// value is nudged by a relative epsilon before flooring.
func RoundHalfUp2(v float64) float64 {
	if v < 0 {
		return -RoundHalfUp2(-v)
	}
	scaled := v * 100
	return math.Floor(scaled+0.5+scaled*1e-12) / 100
}

// VolumetricWeightKg computes the volumetric weight for a parcel with
// dimensions in centimeters.
func VolumetricWeightKg(lengthCm, widthCm, heightCm float64) float64 {
	return lengthCm * widthCm * heightCm / VolumetricDivisor
}

// BillableWeightKg returns the weight carriers actually charge against:
// the larger of actual and volumetric weight, rounded to two decimals.
func BillableWeightKg(lengthCm, widthCm, heightCm, actualKg float64) float64 {
	return RoundHalfUp2(math.Max(actualKg, VolumetricWeightKg(lengthCm, widthCm, heightCm)))
}

// ApplyMultiplier scales an integer minor-unit price by a per-customer
// multiplier and rounds to the nearest minor unit. The multiplier is applied
// to cents, not to a floating dollar value, so repeated quotes cannot drift.
func ApplyMultiplier(priceMinorUnits int64, multiplier float64) int64 {
	if multiplier == 1 {
		return priceMinorUnits
	}
	return int64(math.Floor(float64(priceMinorUnits)*multiplier + 0.5))
}
