//go:build !fastmath

package core

import "math"

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// GainToDecibels converts a linear gain to dB with a silence floor.
// Gains at or below the floor's linear equivalent return floorDB.
func GainToDecibels(gain, floorDB float64) float64 {
	if !(gain > DBToLinear(floorDB)) {
		return floorDB
	}

	return 20 * math.Log10(gain)
}

// DecibelsToGain converts dB to linear gain with a silence floor.
// Values at or below floorDB return exactly 0.
func DecibelsToGain(db, floorDB float64) float64 {
	if !(db > floorDB) {
		return 0
	}

	return math.Pow(10, db/20)
}
