package harmonics

import (
	"testing"

	"github.com/cwbudde/algo-pressor/dsp/saturation"
)

// processStage pushes a full-scale low-frequency sine through a saturation
// stage and returns a steady-state analysis window.
func processStage(t *testing.T, process func(block [][]float64)) []float64 {
	t.Helper()

	const blockLen = 512

	freq := binFreq(40)
	signal := make([]float64, 4*testFFTSize)
	addHarmonic(signal, freq, 0.8)

	out := make([]float64, 0, len(signal))
	for start := 0; start+blockLen <= len(signal); start += blockLen {
		block := [][]float64{append([]float64(nil), signal[start:start+blockLen]...)}
		process(block)
		out = append(out, block[0]...)
	}

	return out[len(out)-testFFTSize:]
}

func TestTubeSignatureIsEvenHeavy(t *testing.T) {
	tube, err := saturation.NewTube()
	if err != nil {
		t.Fatalf("NewTube() error = %v", err)
	}
	if err := tube.Prepare(testSampleRate, 512); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	tube.SetDrive(0.9)

	steady := processStage(t, tube.ProcessBlock)
	a := Analyze(steady, Config{SampleRate: testSampleRate, FundamentalHz: binFreq(40)})

	if a.EvenLevel <= 0 {
		t.Fatalf("EvenLevel = %v, want > 0 for asymmetric stage", a.EvenLevel)
	}
	if a.THD <= 0.001 {
		t.Errorf("THD = %v, want audible distortion at drive 0.9", a.THD)
	}
}

func TestTransformerSignatureIsOddOnly(t *testing.T) {
	tr, err := saturation.NewTransformer()
	if err != nil {
		t.Fatalf("NewTransformer() error = %v", err)
	}
	if err := tr.Prepare(testSampleRate); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	tr.SetColor(1)

	steady := processStage(t, tr.ProcessBlock)
	a := Analyze(steady, Config{SampleRate: testSampleRate, FundamentalHz: binFreq(40)})

	if a.OddLevel <= 0 {
		t.Fatalf("OddLevel = %v, want > 0 for symmetric stage", a.OddLevel)
	}
	// Symmetric waveshaping yields no even harmonics beyond numeric noise.
	if a.EvenLevel > a.OddLevel*0.05 {
		t.Errorf("EvenLevel = %v not well below OddLevel = %v", a.EvenLevel, a.OddLevel)
	}
}
