package chain

import (
	"math"
	"testing"
)

func TestSmootherConverges(t *testing.T) {
	var s smoother
	s.configure(44100, 0.002)
	s.snapTo(0)
	s.setTarget(1)

	// 2 ms time constant: within five time constants the residual is
	// below one percent.
	for i := 0; i < 5*88; i++ {
		s.next()
	}
	if diff := math.Abs(s.current - 1); diff > 0.01 {
		t.Fatalf("residual after 5 time constants = %v, want < 0.01", diff)
	}
}

func TestSmootherAdvanceMatchesPerSample(t *testing.T) {
	var a, b smoother
	a.configure(48000, 0.003)
	b.configure(48000, 0.003)
	a.snapTo(-12)
	b.snapTo(-12)
	a.setTarget(6)
	b.setTarget(6)

	const n = 137
	var last float64
	for i := 0; i < n; i++ {
		last = a.next()
	}
	bulk := b.advance(n)

	if diff := math.Abs(last - bulk); diff > 1e-9 {
		t.Fatalf("advance(%d) = %v, per-sample = %v, diff %v", n, bulk, last, diff)
	}
}

func TestSmootherSnapTo(t *testing.T) {
	var s smoother
	s.configure(44100, 0.005)
	s.snapTo(0.25)

	if got := s.next(); got != 0.25 {
		t.Fatalf("next() after snapTo = %v, want 0.25", got)
	}

	s.setTarget(0.9)
	s.next()
	s.snapTo(0.1)
	if got := s.advance(64); got != 0.1 {
		t.Fatalf("advance() after snapTo = %v, want 0.1", got)
	}
}

func TestSmootherAdvanceZeroSamples(t *testing.T) {
	var s smoother
	s.configure(44100, 0.002)
	s.snapTo(0.5)
	s.setTarget(1)

	if got := s.advance(0); got != 0.5 {
		t.Fatalf("advance(0) = %v, want 0.5", got)
	}
}

func TestSmootherSnapsExactlyOnTinyResidual(t *testing.T) {
	var s smoother
	s.configure(44100, 0.002)
	s.snapTo(0)
	s.setTarget(1)

	// A second of glide leaves a residual far below the snap epsilon.
	s.advance(44100)
	if s.current != 1 {
		t.Fatalf("current after long glide = %v, want exactly 1", s.current)
	}
}
