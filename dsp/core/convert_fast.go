//go:build fastmath

package core

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

// ln10Div20 converts dB to natural-log amplitude: ln(10)/20.
const ln10Div20 = 0.11512925464970229

// DBToLinear converts dB to linear amplitude using fast approximation.
func DBToLinear(db float64) float64 {
	return approx.FastExp(db * ln10Div20)
}

// LinearToDB converts linear amplitude to dB using fast approximation.
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return approx.FastLog(linear) / ln10Div20
}

// GainToDecibels converts a linear gain to dB with a silence floor.
// Gains at or below the floor's linear equivalent return floorDB.
func GainToDecibels(gain, floorDB float64) float64 {
	if !(gain > DBToLinear(floorDB)) {
		return floorDB
	}

	return approx.FastLog(gain) / ln10Div20
}

// DecibelsToGain converts dB to linear gain with a silence floor.
// Values at or below floorDB return exactly 0.
func DecibelsToGain(db, floorDB float64) float64 {
	if !(db > floorDB) {
		return 0
	}

	return approx.FastExp(db * ln10Div20)
}
