// Package testutil holds the deterministic signal generators and tolerance
// assertions shared by the package tests.
package testutil

import "math"

// DeterministicSine returns length samples of a sine at freqHz, starting at
// phase zero. Identical calls produce identical slices.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DC returns length samples pinned at value.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}
