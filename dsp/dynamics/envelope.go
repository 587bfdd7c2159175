package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pressor/dsp/core"
)

const (
	minFollowerAttackMs  = 0.1
	maxFollowerAttackMs  = 100.0
	minFollowerReleaseMs = 10.0
	maxFollowerReleaseMs = 1000.0

	defaultFollowerAttackMs  = 10.0
	defaultFollowerReleaseMs = 100.0

	// Two-stage release shape: a fast stage at 30% of the set release time
	// recovers the transient, then a slow stage at 150% carries the tail.
	// The crossover fires when the envelope falls below half the recorded
	// attack peak.
	fastReleaseRatio      = 0.3
	slowReleaseRatio      = 1.5
	releaseStageCrossover = 0.5
)

// Stage identifies the envelope follower's ballistic state.
type Stage int

const (
	// StageAttack means the envelope is rising toward the input.
	StageAttack Stage = iota
	// StageReleaseFast is the initial quick recovery after a transient.
	StageReleaseFast
	// StageReleaseSlow is the long musical tail. Once entered, the follower
	// stays here until the next attack.
	StageReleaseSlow
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageReleaseFast:
		return "release-fast"
	case StageReleaseSlow:
		return "release-slow"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Follower smooths a detection level into a control envelope using
// asymmetric attack/release ballistics with an optical-style two-stage
// release. The envelope is tracked in linear gain internally; the public
// contract is dB in, dB out.
type Follower struct {
	sampleRate float64
	attackMs   float64
	releaseMs  float64

	attackCoeff      float64
	fastReleaseCoeff float64
	slowReleaseCoeff float64

	envelope float64 // linear
	peak     float64 // envelope value recorded at the last attack sample
	stage    Stage
}

// NewFollower creates an envelope follower with 10 ms attack and 100 ms
// release defaults.
func NewFollower(sampleRate float64) (*Follower, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("envelope follower sample rate must be positive and finite: %f", sampleRate)
	}

	f := &Follower{
		sampleRate: sampleRate,
		attackMs:   defaultFollowerAttackMs,
		releaseMs:  defaultFollowerReleaseMs,
	}

	f.recalculate()

	return f, nil
}

// SetSampleRate updates the sample rate, recomputes coefficients, and resets
// the envelope state.
func (f *Follower) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("envelope follower sample rate must be positive and finite: %f", sampleRate)
	}

	f.sampleRate = sampleRate
	f.recalculate()
	f.Reset()

	return nil
}

// SetAttack sets the attack time in milliseconds, clamped to [0.1, 100].
// Recomputes coefficients without resetting the envelope state.
func (f *Follower) SetAttack(ms float64) {
	f.attackMs = core.Clamp(ms, minFollowerAttackMs, maxFollowerAttackMs)
	f.recalculate()
}

// SetRelease sets the release time in milliseconds, clamped to [10, 1000].
// Recomputes coefficients without resetting the envelope state.
func (f *Follower) SetRelease(ms float64) {
	f.releaseMs = core.Clamp(ms, minFollowerReleaseMs, maxFollowerReleaseMs)
	f.recalculate()
}

// Reset clears the envelope, the recorded peak, and rearms the fast release.
func (f *Follower) Reset() {
	f.envelope = 0
	f.peak = 0
	f.stage = StageAttack
}

// Attack returns the attack time in milliseconds.
func (f *Follower) Attack() float64 { return f.attackMs }

// Release returns the release time in milliseconds.
func (f *Follower) Release() float64 { return f.releaseMs }

// SampleRate returns the sample rate in Hz.
func (f *Follower) SampleRate() float64 { return f.sampleRate }

// Stage returns the current ballistic stage.
func (f *Follower) Stage() Stage { return f.stage }

// EnvelopeDB returns the current envelope level in dB with the -60 dB floor.
func (f *Follower) EnvelopeDB() float64 {
	return core.GainToDecibels(f.envelope, core.SilenceFloorDB)
}

// ProcessSample advances the envelope by one sample of detection level (dB)
// and returns the smoothed envelope level in dB.
func (f *Follower) ProcessSample(detectionDB float64) float64 {
	in := core.DecibelsToGain(detectionDB, core.SilenceFloorDB)

	if in > f.envelope {
		f.envelope = f.attackCoeff*f.envelope + (1-f.attackCoeff)*in
		f.peak = f.envelope
		f.stage = StageAttack
	} else {
		if f.stage == StageAttack {
			f.stage = StageReleaseFast
		}
		if f.stage == StageReleaseFast && f.envelope < f.peak*releaseStageCrossover {
			f.stage = StageReleaseSlow
		}

		coeff := f.fastReleaseCoeff
		if f.stage == StageReleaseSlow {
			coeff = f.slowReleaseCoeff
		}

		f.envelope = core.FlushDenormals(coeff*f.envelope + (1-coeff)*in)
	}

	return core.GainToDecibels(f.envelope, core.SilenceFloorDB)
}

// ProcessBlock fills out with smoothed envelope levels for a block of
// detection levels.
func (f *Follower) ProcessBlock(detectionIn, out []float64) {
	n := len(out)
	if len(detectionIn) < n {
		n = len(detectionIn)
	}

	for i := 0; i < n; i++ {
		out[i] = f.ProcessSample(detectionIn[i])
	}
}

func (f *Follower) recalculate() {
	attackSeconds := f.attackMs * 0.001
	releaseSeconds := f.releaseMs * 0.001

	f.attackCoeff = math.Exp(-1 / (f.sampleRate * attackSeconds))
	f.fastReleaseCoeff = math.Exp(-1 / (f.sampleRate * releaseSeconds * fastReleaseRatio))
	f.slowReleaseCoeff = math.Exp(-1 / (f.sampleRate * releaseSeconds * slowReleaseRatio))
}
