package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-pressor/dsp/filter/biquad"
)

// responseAt evaluates |H(e^jw)| for a biquad at normalized frequency w.
func responseAt(c biquad.Coefficients, w float64) float64 {
	z := cmplx.Exp(complex(0, -w))
	num := complex(c.B0, 0) + complex(c.B1, 0)*z + complex(c.B2, 0)*z*z
	den := complex(1, 0) + complex(c.A1, 0)*z + complex(c.A2, 0)*z*z

	return cmplx.Abs(num / den)
}

func TestLowpassResponse(t *testing.T) {
	c := Lowpass(1000, defaultQ, 48000)

	if dc := responseAt(c, 0); math.Abs(dc-1) > 1e-9 {
		t.Errorf("DC gain = %v, want 1", dc)
	}

	high := responseAt(c, math.Pi*0.9)
	if high > 0.05 {
		t.Errorf("near-Nyquist gain = %v, want strong attenuation", high)
	}
}

func TestHighpassResponse(t *testing.T) {
	c := Highpass(1000, defaultQ, 48000)

	if dc := responseAt(c, 1e-6); dc > 1e-6 {
		t.Errorf("DC gain = %v, want ~0", dc)
	}

	high := responseAt(c, math.Pi*0.9)
	if math.Abs(high-1) > 0.05 {
		t.Errorf("near-Nyquist gain = %v, want ~1", high)
	}
}

func TestLowShelfGain(t *testing.T) {
	const gainDB = 3.0
	c := LowShelf(120, gainDB, 0.5, 48000)

	dcDB := 20 * math.Log10(responseAt(c, 1e-6))
	if math.Abs(dcDB-gainDB) > 0.05 {
		t.Errorf("DC gain = %v dB, want %v dB", dcDB, gainDB)
	}

	highDB := 20 * math.Log10(responseAt(c, math.Pi*0.9))
	if math.Abs(highDB) > 0.1 {
		t.Errorf("high-frequency gain = %v dB, want ~0 dB", highDB)
	}
}

func TestHighShelfGain(t *testing.T) {
	const gainDB = -1.5
	c := HighShelf(8000, gainDB, 0.5, 48000)

	nyqDB := 20 * math.Log10(responseAt(c, math.Pi*0.999))
	if math.Abs(nyqDB-gainDB) > 0.05 {
		t.Errorf("Nyquist gain = %v dB, want %v dB", nyqDB, gainDB)
	}

	dcDB := 20 * math.Log10(responseAt(c, 1e-6))
	if math.Abs(dcDB) > 0.1 {
		t.Errorf("DC gain = %v dB, want ~0 dB", dcDB)
	}
}

func TestZeroGainShelfIsTransparent(t *testing.T) {
	for _, w := range []float64{1e-3, 0.1, 1, 2, 3} {
		if g := responseAt(LowShelf(120, 0, 0.5, 48000), w); math.Abs(g-1) > 1e-9 {
			t.Fatalf("LowShelf(0 dB) gain at w=%v is %v, want 1", w, g)
		}
	}
}

func TestInvalidDesignParameters(t *testing.T) {
	tests := []struct {
		name string
		c    biquad.Coefficients
	}{
		{"zero sample rate", Lowpass(1000, defaultQ, 0)},
		{"negative freq", Highpass(-1, defaultQ, 48000)},
		{"freq at nyquist", Lowpass(24000, defaultQ, 48000)},
		{"NaN freq", LowShelf(math.NaN(), 3, 0.5, 48000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.c != (biquad.Coefficients{}) {
				t.Errorf("got %+v, want zero coefficients", tt.c)
			}
		})
	}
}

func TestNormalizedQFallback(t *testing.T) {
	if q := normalizedQ(0); q != defaultQ {
		t.Errorf("normalizedQ(0) = %v, want %v", q, defaultQ)
	}
	if q := normalizedQ(2.5); q != 2.5 {
		t.Errorf("normalizedQ(2.5) = %v, want 2.5", q)
	}
}
