package saturation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pressor/dsp/core"
	"github.com/cwbudde/algo-pressor/dsp/filter/biquad"
	"github.com/cwbudde/algo-pressor/dsp/filter/design"
)

const (
	defaultTransformerLowShelfHz  = 120.0
	defaultTransformerHighShelfHz = 8000.0
	transformerShelfQ             = 0.5

	// Shelf gains scale linearly with the color amount.
	transformerMaxLowBoostDB = 3.0
	transformerMaxHighCutDB  = 1.5

	minTransformerShelfHz = 20.0
	maxTransformerShelfHz = 16000.0

	// transformerShelfNyquistRatio caps the effective shelf corners at a
	// fraction of the sample rate so the designs stay valid at low rates.
	transformerShelfNyquistRatio = 0.45

	// colorEpsilon gates shelf recomputation to genuine color changes.
	colorEpsilon = 1e-6
)

// TransformerOption mutates construction-time transformer parameters.
type TransformerOption func(*transformerConfig) error

type transformerConfig struct {
	lowShelfHz  float64
	highShelfHz float64
}

func defaultTransformerConfig() transformerConfig {
	return transformerConfig{
		lowShelfHz:  defaultTransformerLowShelfHz,
		highShelfHz: defaultTransformerHighShelfHz,
	}
}

// WithTransformerLowShelfHz sets the corner of the bass-weight low shelf.
func WithTransformerLowShelfHz(freq float64) TransformerOption {
	return func(cfg *transformerConfig) error {
		if freq < minTransformerShelfHz || freq > maxTransformerShelfHz || !core.IsFinite(freq) {
			return fmt.Errorf("transformer low shelf must be in [%g, %g] Hz: %f",
				minTransformerShelfHz, maxTransformerShelfHz, freq)
		}
		cfg.lowShelfHz = freq
		return nil
	}
}

// WithTransformerHighShelfHz sets the corner of the high-frequency silk shelf.
func WithTransformerHighShelfHz(freq float64) TransformerOption {
	return func(cfg *transformerConfig) error {
		if freq < minTransformerShelfHz || freq > maxTransformerShelfHz || !core.IsFinite(freq) {
			return fmt.Errorf("transformer high shelf must be in [%g, %g] Hz: %f",
				minTransformerShelfHz, maxTransformerShelfHz, freq)
		}
		cfg.highShelfHz = freq
		return nil
	}
}

// Transformer applies iron-core coloration to a block after compression:
// gentle soft saturation with a subtle odd-harmonic (cubic) term, followed
// by a low shelf that adds weight and a high shelf that takes the edge off
// the top. Unlike the tube stage's even harmonics, the odd harmonics here
// give the drier "iron" character.
type Transformer struct {
	sampleRate float64
	prepared   bool

	color float64

	lowShelfHz  float64
	highShelfHz float64

	lowShelf  [maxChannels]*biquad.Section
	highShelf [maxChannels]*biquad.Section
}

// NewTransformer creates an unprepared transformer stage. Call Prepare
// before processing.
func NewTransformer(opts ...TransformerOption) (*Transformer, error) {
	cfg := defaultTransformerConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Transformer{
		lowShelfHz:  cfg.lowShelfHz,
		highShelfHz: cfg.highShelfHz,
	}, nil
}

// Prepare builds the shelving filters for the sample rate. Allocates; must
// not be called concurrently with ProcessBlock.
func (t *Transformer) Prepare(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("transformer sample rate must be positive and finite: %f", sampleRate)
	}

	t.sampleRate = sampleRate

	lowCoeffs, highCoeffs := t.shelfCoefficients(t.color)
	for ch := 0; ch < maxChannels; ch++ {
		t.lowShelf[ch] = biquad.NewSection(lowCoeffs)
		t.highShelf[ch] = biquad.NewSection(highCoeffs)
	}

	t.prepared = true

	return nil
}

// Reset clears the shelving filter states.
func (t *Transformer) Reset() {
	for ch := 0; ch < maxChannels; ch++ {
		if t.lowShelf[ch] != nil {
			t.lowShelf[ch].Reset()
		}
		if t.highShelf[ch] != nil {
			t.highShelf[ch].Reset()
		}
	}
}

// SetColor sets the coloration amount, clamped to [0, 1], and recomputes the
// shelf coefficients when the amount actually changed. Filter state is
// preserved across coefficient updates. Allocation-free.
func (t *Transformer) SetColor(amount float64) {
	amount = core.Clamp(amount, 0, 1)
	if math.Abs(amount-t.color) < colorEpsilon {
		t.color = amount
		return
	}

	t.color = amount

	if !t.prepared {
		return
	}

	lowCoeffs, highCoeffs := t.shelfCoefficients(amount)
	for ch := 0; ch < maxChannels; ch++ {
		t.lowShelf[ch].SetCoefficients(lowCoeffs)
		t.highShelf[ch].SetCoefficients(highCoeffs)
	}
}

// Color returns the coloration amount in [0, 1].
func (t *Transformer) Color() float64 { return t.color }

// SampleRate returns the prepared sample rate in Hz.
func (t *Transformer) SampleRate() float64 { return t.sampleRate }

// ProcessBlock applies the transformer stage to block in place. Below the
// bypass threshold the block passes through bit-identically.
func (t *Transformer) ProcessBlock(block [][]float64) {
	if !t.prepared || t.color < bypassThreshold {
		return
	}

	channels := len(block)
	if channels > maxChannels {
		channels = maxChannels
	}

	for ch := 0; ch < channels; ch++ {
		data := block[ch]

		for i := range data {
			data[i] = t.saturate(data[i])
		}

		t.lowShelf[ch].ProcessBlock(data)
		t.highShelf[ch].ProcessBlock(data)
	}
}

// saturate is the per-sample iron-core nonlinearity.
func (t *Transformer) saturate(x float64) float64 {
	color := t.color

	knee := 0.2 + color*0.4
	sat := SoftClip(x*(1+color*0.5), knee)

	// Subtle odd harmonics, themselves soft-saturated to stay polite.
	sat += SoftClip(x*x*x*0.1*color, 0.5)

	sat *= 0.95 / (1 + color*0.2)

	wet := color * 0.5

	return x*(1-wet) + sat*wet
}

func (t *Transformer) shelfCoefficients(color float64) (low, high biquad.Coefficients) {
	// Keep the corners comfortably below Nyquist so low sample rates do
	// not push the high shelf into an invalid design.
	maxHz := t.sampleRate * transformerShelfNyquistRatio
	lowHz := math.Min(t.lowShelfHz, maxHz)
	highHz := math.Min(t.highShelfHz, maxHz)

	low = design.LowShelf(lowHz, color*transformerMaxLowBoostDB, transformerShelfQ, t.sampleRate)
	high = design.HighShelf(highHz, -color*transformerMaxHighCutDB, transformerShelfQ, t.sampleRate)

	return low, high
}
