package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pressor/dsp/core"
)

const (
	// Default hybrid blend: mostly RMS for the smooth optical feel, with
	// enough peak awareness to catch transients.
	defaultRMSWeight = 0.7

	// defaultRMSWindowSeconds is the sliding RMS integration window.
	defaultRMSWindowSeconds = 0.01

	// Peak follower ballistics: near-instant attack, medium release.
	peakAttackSeconds  = 0.0001
	peakReleaseSeconds = 0.05

	maxRMSWindowSeconds = 1.0
)

// DetectorOption mutates construction-time detector parameters.
type DetectorOption func(*detectorConfig) error

type detectorConfig struct {
	rmsWeight        float64
	rmsWindowSeconds float64
}

func defaultDetectorConfig() detectorConfig {
	return detectorConfig{
		rmsWeight:        defaultRMSWeight,
		rmsWindowSeconds: defaultRMSWindowSeconds,
	}
}

// WithRMSWeight sets the RMS share of the hybrid blend in [0, 1].
// The peak share is always 1 - rmsWeight, so the weights sum to one.
func WithRMSWeight(weight float64) DetectorOption {
	return func(cfg *detectorConfig) error {
		if weight < 0 || weight > 1 || !core.IsFinite(weight) {
			return fmt.Errorf("detector rms weight must be in [0, 1]: %f", weight)
		}
		cfg.rmsWeight = weight
		return nil
	}
}

// WithRMSWindow sets the sliding RMS window duration in seconds.
func WithRMSWindow(seconds float64) DetectorOption {
	return func(cfg *detectorConfig) error {
		if seconds <= 0 || seconds > maxRMSWindowSeconds || !core.IsFinite(seconds) {
			return fmt.Errorf("detector rms window must be in (0, %g] s: %f", maxRMSWindowSeconds, seconds)
		}
		cfg.rmsWindowSeconds = seconds
		return nil
	}
}

// Detector converts raw stereo samples into a single detection level in dB.
//
// It runs two level estimators over the mono sum in parallel: a sliding-window
// RMS detector (ring buffer of squared samples with a running sum) and a peak
// envelope follower with asymmetric one-pole coefficients. The two linear
// levels are blended and converted to dB with a -60 dB floor.
type Detector struct {
	sampleRate       float64
	rmsWeight        float64
	peakWeight       float64
	rmsWindowSeconds float64

	// Sliding RMS state
	window     []float64
	writeIndex int
	runningSum float64

	// Peak follower state
	peakAttackCoeff  float64
	peakReleaseCoeff float64
	peakEnvelope     float64
}

// NewDetector creates a hybrid RMS/peak detector for the given sample rate.
func NewDetector(sampleRate float64, opts ...DetectorOption) (*Detector, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("detector sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := defaultDetectorConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	d := &Detector{
		sampleRate:       sampleRate,
		rmsWeight:        cfg.rmsWeight,
		peakWeight:       1 - cfg.rmsWeight,
		rmsWindowSeconds: cfg.rmsWindowSeconds,
	}

	d.prepare()

	return d, nil
}

// SetSampleRate updates the sample rate, recomputes the window length and
// peak coefficients, and resets all detection state. Allocates; call outside
// the processing path.
func (d *Detector) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("detector sample rate must be positive and finite: %f", sampleRate)
	}

	d.sampleRate = sampleRate
	d.prepare()

	return nil
}

// SetBlend updates the RMS share of the hybrid blend, clamped to [0, 1].
// The peak share follows as 1 - rmsWeight.
func (d *Detector) SetBlend(rmsWeight float64) {
	d.rmsWeight = core.Clamp(rmsWeight, 0, 1)
	d.peakWeight = 1 - d.rmsWeight
}

// Reset clears the RMS window and peak envelope without reallocating.
func (d *Detector) Reset() {
	core.Zero(d.window)
	d.writeIndex = 0
	d.runningSum = 0
	d.peakEnvelope = 0
}

// SampleRate returns the current sample rate in Hz.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// RMSWeight returns the RMS share of the hybrid blend.
func (d *Detector) RMSWeight() float64 { return d.rmsWeight }

// PeakWeight returns the peak share of the hybrid blend.
func (d *Detector) PeakWeight() float64 { return d.peakWeight }

// WindowSamples returns the RMS window length in samples (always >= 1).
func (d *Detector) WindowSamples() int { return len(d.window) }

// ProcessSample consumes one stereo sample pair and returns the blended
// detection level in dB, floored at -60 dB. Allocation-free.
func (d *Detector) ProcessSample(left, right float64) float64 {
	mono := (left + right) * 0.5
	squared := mono * mono
	abs := math.Abs(mono)

	// Sliding-window RMS: replace the oldest squared sample in the sum.
	d.runningSum -= d.window[d.writeIndex]
	d.window[d.writeIndex] = squared
	d.runningSum += squared

	d.writeIndex++
	if d.writeIndex >= len(d.window) {
		d.writeIndex = 0
	}

	mean := d.runningSum / float64(len(d.window))
	if mean < 0 {
		// Running-sum drift can leave a tiny negative residue on silence.
		mean = 0
	}
	rms := math.Sqrt(mean)

	if abs > d.peakEnvelope {
		d.peakEnvelope = d.peakAttackCoeff*d.peakEnvelope + (1-d.peakAttackCoeff)*abs
	} else {
		d.peakEnvelope = core.FlushDenormals(d.peakReleaseCoeff * d.peakEnvelope)
	}

	level := rms*d.rmsWeight + d.peakEnvelope*d.peakWeight

	return core.GainToDecibels(level, core.SilenceFloorDB)
}

// ProcessBlock fills out with per-sample detection levels for a stereo block.
// For mono sources pass the same slice for left and right.
func (d *Detector) ProcessBlock(left, right, out []float64) {
	n := len(out)
	if len(left) < n {
		n = len(left)
	}
	if len(right) < n {
		n = len(right)
	}

	for i := 0; i < n; i++ {
		out[i] = d.ProcessSample(left[i], right[i])
	}
}

func (d *Detector) prepare() {
	samples := int(math.Round(d.sampleRate * d.rmsWindowSeconds))
	if samples < 1 {
		samples = 1
	}

	d.window = make([]float64, samples)
	d.writeIndex = 0
	d.runningSum = 0

	d.peakAttackCoeff = math.Exp(-1 / (d.sampleRate * peakAttackSeconds))
	d.peakReleaseCoeff = math.Exp(-1 / (d.sampleRate * peakReleaseSeconds))
	d.peakEnvelope = 0
}
