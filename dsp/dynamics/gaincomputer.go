package dynamics

import (
	"github.com/cwbudde/algo-pressor/dsp/core"
)

const (
	defaultComputerThresholdDB = -20.0
	defaultComputerRatio       = 4.0
	defaultComputerKneeDB      = 6.0

	minComputerThresholdDB = -60.0
	maxComputerThresholdDB = 0.0
	minComputerRatio       = 1.0
	maxComputerKneeDB      = 24.0
)

// GainComputer maps an envelope level in dB to a gain-reduction amount in dB
// via a static soft-knee transfer curve.
//
// It is stateless: Reduction is a deterministic, idempotent function of the
// input level and the current threshold, ratio, and knee width.
type GainComputer struct {
	thresholdDB float64
	ratio       float64
	kneeDB      float64

	// Precomputed knee bounds (threshold +/- kneeDB/2).
	kneeStart float64
	kneeEnd   float64
}

// NewGainComputer creates a gain computer with -20 dB threshold, 4:1 ratio,
// and a 6 dB soft knee.
func NewGainComputer() *GainComputer {
	g := &GainComputer{
		thresholdDB: defaultComputerThresholdDB,
		ratio:       defaultComputerRatio,
		kneeDB:      defaultComputerKneeDB,
	}

	g.updateKneeBounds()

	return g
}

// SetThreshold sets the compression threshold in dB, clamped to [-60, 0].
func (g *GainComputer) SetThreshold(dB float64) {
	g.thresholdDB = core.Clamp(dB, minComputerThresholdDB, maxComputerThresholdDB)
	g.updateKneeBounds()
}

// SetRatio sets the compression ratio, clamped to >= 1.
func (g *GainComputer) SetRatio(ratio float64) {
	if !(ratio >= minComputerRatio) {
		ratio = minComputerRatio
	}
	g.ratio = ratio
}

// SetKneeWidth sets the soft-knee width in dB, clamped to [0, 24].
// A width of 0 gives a hard knee.
func (g *GainComputer) SetKneeWidth(kneeDB float64) {
	g.kneeDB = core.Clamp(kneeDB, 0, maxComputerKneeDB)
	g.updateKneeBounds()
}

// Threshold returns the threshold in dB.
func (g *GainComputer) Threshold() float64 { return g.thresholdDB }

// Ratio returns the compression ratio.
func (g *GainComputer) Ratio() float64 { return g.ratio }

// KneeWidth returns the knee width in dB.
func (g *GainComputer) KneeWidth() float64 { return g.kneeDB }

// KneeStart returns the lower knee bound in dB.
func (g *GainComputer) KneeStart() float64 { return g.kneeStart }

// KneeEnd returns the upper knee bound in dB.
func (g *GainComputer) KneeEnd() float64 { return g.kneeEnd }

// Reduction returns the gain reduction in dB (always <= 0) for an envelope
// level in dB.
//
// Below the knee the transfer is unity. Above the knee the output follows
// threshold + (input - threshold)/ratio. Inside the knee a quadratic
// interpolation ramps the effective slope from 1:1 to the full ratio, which
// keeps the curve and its first derivative continuous at both knee bounds.
func (g *GainComputer) Reduction(inputDB float64) float64 {
	var outputDB float64

	switch {
	case inputDB <= g.kneeStart:
		outputDB = inputDB
	case inputDB >= g.kneeEnd:
		outputDB = g.thresholdDB + (inputDB-g.thresholdDB)/g.ratio
	default:
		kneePosition := (inputDB - g.kneeStart) / g.kneeDB
		compression := kneePosition * kneePosition * 0.5
		slope := 1 - 1/g.ratio
		outputDB = inputDB - slope*compression*g.kneeDB
	}

	return outputDB - inputDB
}

// OutputLevel returns the output level in dB for a given input level,
// useful for plotting the static transfer curve.
func (g *GainComputer) OutputLevel(inputDB float64) float64 {
	return inputDB + g.Reduction(inputDB)
}

func (g *GainComputer) updateKneeBounds() {
	g.kneeStart = g.thresholdDB - g.kneeDB*0.5
	g.kneeEnd = g.thresholdDB + g.kneeDB*0.5
}
