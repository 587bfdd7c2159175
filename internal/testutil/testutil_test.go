package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	a := DeterministicSine(441, 44100, 0.5, 256)
	b := DeterministicSine(441, 44100, 0.5, 256)

	if len(a) != 256 {
		t.Fatalf("length = %d, want 256", len(a))
	}
	if a[0] != 0 {
		t.Errorf("first sample = %v, want 0 (phase zero)", a[0])
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: not reproducible: %v vs %v", i, a[i], b[i])
		}
		if math.Abs(a[i]) > 0.5 {
			t.Fatalf("index %d: %v exceeds amplitude", i, a[i])
		}
	}
}

func TestDC(t *testing.T) {
	d := DC(0.25, 16)
	for i, v := range d {
		if v != 0.25 {
			t.Fatalf("index %d: %v, want 0.25", i, v)
		}
	}
}

func TestMaxAbsDiff(t *testing.T) {
	got, err := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 2})
	if err != nil {
		t.Fatalf("MaxAbsDiff() error = %v", err)
	}
	if got != 1 {
		t.Errorf("MaxAbsDiff() = %v, want 1", got)
	}

	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("MaxAbsDiff() with mismatched lengths expected error")
	}
}
