package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pressor/dsp/core"
)

func TestNewFollower(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		wantErr    bool
	}{
		{"valid 44100", 44100, false},
		{"valid 48000", 48000, false},
		{"invalid zero", 0, true},
		{"invalid negative", -44100, true},
		{"invalid NaN", math.NaN(), true},
		{"invalid Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFollower(tt.sampleRate)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFollower() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && f == nil {
				t.Error("NewFollower() returned nil without error")
			}
		})
	}
}

func TestFollowerTimeClamping(t *testing.T) {
	f, err := NewFollower(48000)
	if err != nil {
		t.Fatalf("NewFollower() error = %v", err)
	}

	tests := []struct {
		name string
		set  func(float64)
		get  func() float64
		in   float64
		want float64
	}{
		{"attack below min", f.SetAttack, f.Attack, 0.01, 0.1},
		{"attack above max", f.SetAttack, f.Attack, 500, 100},
		{"attack in range", f.SetAttack, f.Attack, 25, 25},
		{"release below min", f.SetRelease, f.Release, 1, 10},
		{"release above max", f.SetRelease, f.Release, 5000, 1000},
		{"release in range", f.SetRelease, f.Release, 250, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set(tt.in)
			if got := tt.get(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestFollowerAttackStep verifies that a step from silence to 0 dB reaches
// within 1 dB of the target inside three attack time constants.
func TestFollowerAttackStep(t *testing.T) {
	const sampleRate = 44100.0

	f, err := NewFollower(sampleRate)
	if err != nil {
		t.Fatalf("NewFollower() error = %v", err)
	}
	f.SetAttack(10)

	tau := int(sampleRate * 0.010)

	var envDB float64
	for i := 0; i < 3*tau; i++ {
		envDB = f.ProcessSample(0)
	}

	if envDB < -1 {
		t.Errorf("envelope after 3 tau = %v dB, want within 1 dB of 0", envDB)
	}
}

// TestFollowerTwoStageRelease verifies that the release switches from fast to
// slow exactly once, at the 50%-of-peak crossover, and never reverts without
// an intervening attack.
func TestFollowerTwoStageRelease(t *testing.T) {
	const sampleRate = 44100.0

	f, err := NewFollower(sampleRate)
	if err != nil {
		t.Fatalf("NewFollower() error = %v", err)
	}
	f.SetAttack(0.1)
	f.SetRelease(100)

	// Sustain a loud input long enough to settle the envelope near 0 dB.
	for i := 0; i < 44100; i++ {
		f.ProcessSample(0)
	}
	if f.Stage() != StageAttack {
		t.Fatalf("stage during sustain = %v, want %v", f.Stage(), StageAttack)
	}

	// Drop to silence and track stage transitions.
	fastToSlow := 0
	sawFast := false
	prev := f.Stage()
	for i := 0; i < 2*44100; i++ {
		f.ProcessSample(core.SilenceFloorDB)
		stage := f.Stage()

		if stage == StageReleaseFast {
			sawFast = true
		}
		if prev == StageReleaseFast && stage == StageReleaseSlow {
			fastToSlow++
		}
		if prev == StageReleaseSlow && stage != StageReleaseSlow {
			t.Fatalf("sample %d: left slow release without an attack (%v -> %v)", i, prev, stage)
		}
		prev = stage
	}

	if !sawFast {
		t.Error("release never entered the fast stage")
	}
	if fastToSlow != 1 {
		t.Errorf("fast->slow transitions = %d, want exactly 1", fastToSlow)
	}
	if f.Stage() != StageReleaseSlow {
		t.Errorf("final stage = %v, want %v", f.Stage(), StageReleaseSlow)
	}
}

// TestFollowerCrossoverPoint verifies the stage switch happens when the
// envelope falls below half the recorded peak, not before.
func TestFollowerCrossoverPoint(t *testing.T) {
	f, err := NewFollower(44100)
	if err != nil {
		t.Fatalf("NewFollower() error = %v", err)
	}
	f.SetAttack(0.1)
	f.SetRelease(50)

	for i := 0; i < 44100; i++ {
		f.ProcessSample(0)
	}
	peakDB := f.EnvelopeDB()

	halfPeakDB := peakDB + 20*math.Log10(releaseStageCrossover)

	for i := 0; i < 2*44100; i++ {
		f.ProcessSample(core.SilenceFloorDB)
		if f.Stage() == StageReleaseSlow {
			// Envelope must already be below half the recorded peak.
			if f.EnvelopeDB() > halfPeakDB+0.1 {
				t.Errorf("switched to slow at %v dB, crossover is %v dB", f.EnvelopeDB(), halfPeakDB)
			}
			return
		}
	}

	t.Fatal("never reached slow release")
}

func TestFollowerTimeChangeKeepsState(t *testing.T) {
	f, err := NewFollower(44100)
	if err != nil {
		t.Fatalf("NewFollower() error = %v", err)
	}

	for i := 0; i < 4410; i++ {
		f.ProcessSample(0)
	}
	before := f.EnvelopeDB()

	f.SetAttack(50)
	f.SetRelease(500)

	if got := f.EnvelopeDB(); got != before {
		t.Errorf("envelope changed from %v to %v dB on time-constant update", before, got)
	}
}

func TestFollowerSlowerReleaseDecaysSlower(t *testing.T) {
	run := func(releaseMs float64) float64 {
		f, err := NewFollower(44100)
		if err != nil {
			t.Fatalf("NewFollower() error = %v", err)
		}
		f.SetAttack(0.1)
		f.SetRelease(releaseMs)

		for i := 0; i < 44100; i++ {
			f.ProcessSample(0)
		}
		var envDB float64
		for i := 0; i < 2205; i++ { // 50 ms of release
			envDB = f.ProcessSample(core.SilenceFloorDB)
		}
		return envDB
	}

	short := run(20)
	long := run(800)

	if short >= long {
		t.Errorf("20 ms release decayed to %v dB, 800 ms to %v dB; expected faster decay for shorter release", short, long)
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageAttack, "attack"},
		{StageReleaseFast, "release-fast"},
		{StageReleaseSlow, "release-slow"},
		{Stage(42), "stage(42)"},
	}

	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", int(tt.stage), got, tt.want)
		}
	}
}
