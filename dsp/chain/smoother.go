package chain

import (
	"math"

	"github.com/cwbudde/algo-pressor/dsp/core"
)

// Smoothing time constants per parameter group, in seconds. Attack and
// release are not smoothed; the envelope follower's own ballistics already
// prevent stepping.
const (
	thresholdSmoothingSeconds = 0.002
	ratioSmoothingSeconds     = 0.002
	fatSmoothingSeconds       = 0.005
	outputSmoothingSeconds    = 0.003
	mixSmoothingSeconds       = 0.003

	// smootherSnapEpsilon ends a glide once the residual is inaudible.
	smootherSnapEpsilon = 1e-6
)

// smoother is a one-pole exponential glide toward a target value. It can be
// advanced one sample at a time or a whole block at once; both walk the same
// trajectory.
type smoother struct {
	current float64
	target  float64
	coeff   float64
}

// configure sets the per-sample coefficient for the time constant at the
// given sample rate. Both arguments must be positive.
func (s *smoother) configure(sampleRate, timeConstantSeconds float64) {
	s.coeff = math.Exp(-1 / (sampleRate * timeConstantSeconds))
}

func (s *smoother) setTarget(v float64) {
	s.target = v
}

// snapTo abandons any glide in progress and pins current to v.
func (s *smoother) snapTo(v float64) {
	s.current = v
	s.target = v
}

// next advances one sample and returns the new current value.
func (s *smoother) next() float64 {
	s.current = s.target + (s.current-s.target)*s.coeff
	if math.Abs(s.current-s.target) < smootherSnapEpsilon {
		s.current = s.target
	}

	return core.FlushDenormals(s.current)
}

// advance walks n samples of the glide in one step and returns the value the
// per-sample recurrence would have reached.
func (s *smoother) advance(n int) float64 {
	if n <= 0 {
		return s.current
	}

	s.current = s.target + (s.current-s.target)*math.Pow(s.coeff, float64(n))
	if math.Abs(s.current-s.target) < smootherSnapEpsilon {
		s.current = s.target
	}

	return core.FlushDenormals(s.current)
}
