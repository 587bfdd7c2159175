package saturation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pressor/dsp/core"
)

const (
	// maxChannels is the widest block the stages accept (stereo).
	maxChannels = 2

	// bypassThreshold: below this drive/color amount the stages are
	// transparent and do no work at all.
	bypassThreshold = 0.001

	defaultTubeLowpassHz  = 800.0
	defaultTubeHighpassHz = 600.0
	defaultTubeDCBlockHz  = 5.0

	minTubeSplitHz = 20.0
	maxTubeSplitHz = 5000.0
	maxTubeDCHz    = 40.0
)

// TubeOption mutates construction-time tube parameters.
type TubeOption func(*tubeConfig) error

type tubeConfig struct {
	lowpassHz  float64
	highpassHz float64
	dcBlockHz  float64
}

func defaultTubeConfig() tubeConfig {
	return tubeConfig{
		lowpassHz:  defaultTubeLowpassHz,
		highpassHz: defaultTubeHighpassHz,
		dcBlockHz:  defaultTubeDCBlockHz,
	}
}

// WithTubeLowpassHz sets the corner of the lowpass that extracts the band to
// be saturated.
func WithTubeLowpassHz(freq float64) TubeOption {
	return func(cfg *tubeConfig) error {
		if freq < minTubeSplitHz || freq > maxTubeSplitHz || !core.IsFinite(freq) {
			return fmt.Errorf("tube lowpass must be in [%g, %g] Hz: %f", minTubeSplitHz, maxTubeSplitHz, freq)
		}
		cfg.lowpassHz = freq
		return nil
	}
}

// WithTubeHighpassHz sets the corner of the highpass that extracts the band
// kept clean.
func WithTubeHighpassHz(freq float64) TubeOption {
	return func(cfg *tubeConfig) error {
		if freq < minTubeSplitHz || freq > maxTubeSplitHz || !core.IsFinite(freq) {
			return fmt.Errorf("tube highpass must be in [%g, %g] Hz: %f", minTubeSplitHz, maxTubeSplitHz, freq)
		}
		cfg.highpassHz = freq
		return nil
	}
}

// WithTubeDCBlockHz sets the corner of the DC-blocking highpass that removes
// the offset introduced by the asymmetric waveshaper. Zero disables it.
func WithTubeDCBlockHz(freq float64) TubeOption {
	return func(cfg *tubeConfig) error {
		if freq < 0 || freq > maxTubeDCHz || !core.IsFinite(freq) {
			return fmt.Errorf("tube dc-block must be in [0, %g] Hz: %f", maxTubeDCHz, freq)
		}
		cfg.dcBlockHz = freq
		return nil
	}
}

// Tube applies warm tube-style coloration to a block before compression.
//
// The signal is split into a low band (to be saturated) and a high band
// (kept clean) with one-pole filters. Only the low band passes through the
// asymmetric waveshaper, which generates the even harmonics perceived as
// warmth. The overlapping split corners (800 Hz lowpass / 600 Hz highpass)
// crossfade the bands around the crossover.
type Tube struct {
	sampleRate float64
	maxBlock   int
	prepared   bool

	drive float64

	lowpassHz  float64
	highpassHz float64
	dcBlockHz  float64

	lowpass  [maxChannels]onePoleLowPass
	highpass [maxChannels]onePoleHighPass
	dcBlock  [maxChannels]onePoleHighPass

	// Per-block scratch, sized in Prepare.
	lowBand  [][]float64
	highBand [][]float64
}

// NewTube creates an unprepared tube stage. Call Prepare before processing.
func NewTube(opts ...TubeOption) (*Tube, error) {
	cfg := defaultTubeConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Tube{
		lowpassHz:  cfg.lowpassHz,
		highpassHz: cfg.highpassHz,
		dcBlockHz:  cfg.dcBlockHz,
	}, nil
}

// Prepare configures the filters for the sample rate and sizes the band
// scratch buffers for the maximum block length. Allocates; must not be
// called concurrently with ProcessBlock.
func (t *Tube) Prepare(sampleRate float64, maxBlockSamples int) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("tube sample rate must be positive and finite: %f", sampleRate)
	}
	if maxBlockSamples <= 0 {
		return fmt.Errorf("tube max block samples must be positive: %d", maxBlockSamples)
	}

	t.sampleRate = sampleRate
	t.maxBlock = maxBlockSamples

	for ch := 0; ch < maxChannels; ch++ {
		t.lowpass[ch].Configure(t.lowpassHz, sampleRate)
		t.highpass[ch].Configure(t.highpassHz, sampleRate)
		t.dcBlock[ch].Configure(t.dcBlockHz, sampleRate)
	}

	t.lowBand = core.EnsureBlock(t.lowBand, maxChannels, maxBlockSamples)
	t.highBand = core.EnsureBlock(t.highBand, maxChannels, maxBlockSamples)

	t.Reset()
	t.prepared = true

	return nil
}

// Reset clears all filter states.
func (t *Tube) Reset() {
	for ch := 0; ch < maxChannels; ch++ {
		t.lowpass[ch].Reset()
		t.highpass[ch].Reset()
		t.dcBlock[ch].Reset()
	}
}

// SetDrive sets the saturation amount, clamped to [0, 1]. Derived from the
// FAT parameter by the chain.
func (t *Tube) SetDrive(amount float64) {
	t.drive = core.Clamp(amount, 0, 1)
}

// Drive returns the saturation amount in [0, 1].
func (t *Tube) Drive() float64 { return t.drive }

// SampleRate returns the prepared sample rate in Hz.
func (t *Tube) SampleRate() float64 { return t.sampleRate }

// ProcessBlock applies the tube stage to block in place. Blocks wider than
// two channels use only the first two; blocks longer than the prepared
// maximum are left untouched. Below the bypass threshold the block passes
// through bit-identically.
func (t *Tube) ProcessBlock(block [][]float64) {
	if !t.prepared || t.drive < bypassThreshold {
		return
	}

	channels := len(block)
	if channels == 0 {
		return
	}
	if channels > maxChannels {
		channels = maxChannels
	}

	samples := len(block[0])
	if samples == 0 || samples > t.maxBlock {
		return
	}

	highAtten := 1 - t.drive*0.3

	for ch := 0; ch < channels; ch++ {
		low := t.lowBand[ch][:samples]
		high := t.highBand[ch][:samples]
		data := block[ch]

		for i := 0; i < samples; i++ {
			x := data[i]
			low[i] = t.lowpass[ch].Process(x)
			high[i] = t.highpass[ch].Process(x)
		}

		for i := 0; i < samples; i++ {
			low[i] = t.saturate(low[i])
		}

		// Recombine: saturated lows plus lightly attenuated clean highs,
		// then strip the waveshaper's DC offset. The high band is not
		// compensated on the low side intentionally; the slight tilt with
		// drive is part of the stage's voicing.
		for i := 0; i < samples; i++ {
			data[i] = t.dcBlock[ch].Process(low[i] + high[i]*highAtten)
		}
	}
}

// saturate is the per-sample asymmetric tube waveshaper.
func (t *Tube) saturate(in float64) float64 {
	drive := t.drive

	x := in * (1 + drive*1.5)

	// tanh at reduced gain keeps the curve smooth at musical levels.
	out := math.Tanh(x * 0.8)

	// Asymmetric quadratic term on negative excursions only: even harmonics.
	if x < 0 {
		out += x * math.Abs(x) * 0.08 * drive
	}

	// Level-dependent harmonic emphasis from the undriven input.
	out += in * math.Abs(in) * 0.15 * drive

	out = SoftClip(out, 0.3+drive*0.5)
	out *= 0.85 / (1 + drive*0.3)

	return in*(1-drive) + out*drive
}
