// Package harmonics measures the harmonic fingerprint a nonlinear stage
// leaves on a sine: per-harmonic levels relative to the fundamental, plus
// even and odd aggregates. Tube-style asymmetric stages show up in the even
// aggregate, symmetric transformer-style stages in the odd one.
package harmonics

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultMaxHarmonics = 10

	// Hann main lobe: the first minimum sits two bins out, so a peak is
	// captured over bin±2.
	hannCaptureBins = 2
)

// Config holds analysis parameters.
type Config struct {
	// SampleRate of the signal in Hz. Required.
	SampleRate float64
	// FundamentalHz pins the fundamental bin. When zero the strongest bin
	// above DC is used.
	FundamentalHz float64
	// FFTSize is rounded up to a power of two; zero sizes it from the
	// signal length.
	FFTSize int
	// MaxHarmonics caps how many harmonics above the fundamental are
	// measured. Zero means 10.
	MaxHarmonics int
}

// Level is one harmonic's amplitude relative to the fundamental.
type Level struct {
	// Order is the harmonic number; 2 is the first overtone.
	Order int
	// Hz is the harmonic's center frequency.
	Hz float64
	// Relative is the amplitude as a fraction of the fundamental.
	Relative float64
}

// Analysis is the measured harmonic fingerprint.
type Analysis struct {
	FundamentalHz    float64
	FundamentalLevel float64

	// Harmonics lists orders 2..N that fit below Nyquist.
	Harmonics []Level

	// EvenLevel and OddLevel are root-sum-square aggregates of the even
	// and odd entries of Harmonics, relative to the fundamental.
	EvenLevel float64
	OddLevel  float64

	// THD is the root-sum-square of all measured harmonics relative to
	// the fundamental.
	THD float64
}

// EvenOddRatio returns EvenLevel/OddLevel, or +Inf when no odd content was
// measured. Above 1 the even harmonics dominate.
func (a Analysis) EvenOddRatio() float64 {
	if a.OddLevel <= 0 {
		return math.Inf(1)
	}

	return a.EvenLevel / a.OddLevel
}

// Analyze windows the signal with a Hann window, transforms it, and measures
// the harmonic series. Degenerate input (empty signal, non-positive sample
// rate) yields a zero Analysis.
func Analyze(signal []float64, cfg Config) Analysis {
	if len(signal) < 2 || cfg.SampleRate <= 0 {
		return Analysis{}
	}

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = len(signal)
	}
	fftSize = nextPowerOf2(fftSize)

	inData := make([]complex128, fftSize)
	n := len(signal)
	if n > fftSize {
		n = fftSize
	}
	for i := 0; i < n; i++ {
		// Hann window over the analyzed span.
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		inData[i] = complex(signal[i]*w, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Analysis{}
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, inData); err != nil {
		return Analysis{}
	}

	binCount := fftSize/2 + 1
	re := make([]float64, binCount)
	im := make([]float64, binCount)
	for i := 0; i < binCount; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	mag := make([]float64, binCount)
	vecmath.Magnitude(mag, re, im)

	binHz := cfg.SampleRate / float64(fftSize)
	maxBin := binCount - 1

	fundamentalBin := strongestBin(mag, 1, maxBin)
	if cfg.FundamentalHz > 0 {
		fundamentalBin = clampInt(int(math.Round(cfg.FundamentalHz/binHz)), 1, maxBin)
	}

	fundamentalLevel := peakLevel(mag, fundamentalBin)
	if fundamentalLevel <= 0 {
		return Analysis{FundamentalHz: float64(fundamentalBin) * binHz}
	}

	maxHarmonics := cfg.MaxHarmonics
	if maxHarmonics <= 0 {
		maxHarmonics = defaultMaxHarmonics
	}

	a := Analysis{
		FundamentalHz:    float64(fundamentalBin) * binHz,
		FundamentalLevel: fundamentalLevel,
	}

	var evenSq, oddSq, totalSq float64
	for k := 2; k <= maxHarmonics+1; k++ {
		bin := k * fundamentalBin
		if bin+hannCaptureBins > maxBin {
			break
		}

		rel := peakLevel(mag, bin) / fundamentalLevel
		a.Harmonics = append(a.Harmonics, Level{
			Order:    k,
			Hz:       float64(bin) * binHz,
			Relative: rel,
		})

		totalSq += rel * rel
		if k%2 == 0 {
			evenSq += rel * rel
		} else {
			oddSq += rel * rel
		}
	}

	a.EvenLevel = math.Sqrt(evenSq)
	a.OddLevel = math.Sqrt(oddSq)
	a.THD = math.Sqrt(totalSq)

	return a
}

// peakLevel sums the magnitude over the capture width around bin, covering
// the Hann main lobe.
func peakLevel(mag []float64, bin int) float64 {
	lo := bin - hannCaptureBins
	if lo < 0 {
		lo = 0
	}
	hi := bin + hannCaptureBins
	if hi > len(mag)-1 {
		hi = len(mag) - 1
	}

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += mag[i]
	}

	return sum
}

func strongestBin(mag []float64, lo, hi int) int {
	best := lo
	bestVal := -1.0
	for i := lo; i <= hi; i++ {
		if mag[i] > bestVal {
			bestVal = mag[i]
			best = i
		}
	}

	return best
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}

	return val
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
