package chain

import "github.com/cwbudde/algo-pressor/dsp/core"

// Parameter domains. Values outside these ranges are clamped, never rejected.
const (
	MinThresholdDB = -60.0
	MaxThresholdDB = 0.0

	MinRatio = 1.0
	MaxRatio = 20.0

	MinAttackMs = 0.1
	MaxAttackMs = 100.0

	MinReleaseMs = 10.0
	MaxReleaseMs = 1000.0

	MinFatPercent = 0.0
	MaxFatPercent = 100.0

	MinOutputDB = -12.0
	MaxOutputDB = 12.0

	MinMixPercent = 0.0
	MaxMixPercent = 100.0
)

// Parameters is one snapshot of the seven user-facing controls.
type Parameters struct {
	// ThresholdDB is the compression threshold in dB, [-60, 0].
	ThresholdDB float64
	// Ratio is the compression ratio, [1, 20].
	Ratio float64
	// AttackMs is the envelope attack time in milliseconds, [0.1, 100].
	AttackMs float64
	// ReleaseMs is the envelope release time in milliseconds, [10, 1000].
	ReleaseMs float64
	// FatPercent drives both saturation stages, [0, 100].
	FatPercent float64
	// OutputDB is the post-chain trim in dB, [-12, 12].
	OutputDB float64
	// MixPercent is the wet/dry blend, [0, 100]. 100 is fully wet.
	MixPercent float64
}

// DefaultParameters returns the power-on settings: moderate 4:1 compression
// at -20 dB, half-driven saturation, unity output, fully wet.
func DefaultParameters() Parameters {
	return Parameters{
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    10,
		ReleaseMs:   100,
		FatPercent:  50,
		OutputDB:    0,
		MixPercent:  100,
	}
}

// Clamped returns a copy with every field forced into its documented domain.
// NaN collapses to the domain minimum.
func (p Parameters) Clamped() Parameters {
	return Parameters{
		ThresholdDB: core.Clamp(p.ThresholdDB, MinThresholdDB, MaxThresholdDB),
		Ratio:       core.Clamp(p.Ratio, MinRatio, MaxRatio),
		AttackMs:    core.Clamp(p.AttackMs, MinAttackMs, MaxAttackMs),
		ReleaseMs:   core.Clamp(p.ReleaseMs, MinReleaseMs, MaxReleaseMs),
		FatPercent:  core.Clamp(p.FatPercent, MinFatPercent, MaxFatPercent),
		OutputDB:    core.Clamp(p.OutputDB, MinOutputDB, MaxOutputDB),
		MixPercent:  core.Clamp(p.MixPercent, MinMixPercent, MaxMixPercent),
	}
}
