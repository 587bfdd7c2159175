package chain

import (
	"math"
	"sync/atomic"
)

// atomicFloat64 stores a float64 as raw bits in an atomic word.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

// Store is the lock-free bridge between a control thread writing parameter
// values and the audio thread reading them. Each parameter is an independent
// atomic float: a control-side Set is visible to the next Snapshot without
// blocking either side. Single writer per parameter; any number of readers.
//
// Values are clamped to their documented domains at write time, so a
// Snapshot is always in range.
type Store struct {
	threshold atomicFloat64
	ratio     atomicFloat64
	attack    atomicFloat64
	release   atomicFloat64
	fat       atomicFloat64
	output    atomicFloat64
	mix       atomicFloat64
}

// NewStore creates a store holding the given initial settings, clamped.
func NewStore(initial Parameters) *Store {
	s := &Store{}
	s.SetAll(initial)

	return s
}

// SetAll writes every parameter from p, clamped field by field. The seven
// writes are individually atomic, not one transaction; a concurrent Snapshot
// may observe a mix of old and new values, each still in range.
func (s *Store) SetAll(p Parameters) {
	p = p.Clamped()
	s.threshold.Store(p.ThresholdDB)
	s.ratio.Store(p.Ratio)
	s.attack.Store(p.AttackMs)
	s.release.Store(p.ReleaseMs)
	s.fat.Store(p.FatPercent)
	s.output.Store(p.OutputDB)
	s.mix.Store(p.MixPercent)
}

// SetThresholdDB sets the compression threshold in dB, clamped to [-60, 0].
func (s *Store) SetThresholdDB(dB float64) {
	s.threshold.Store(clampParam(dB, MinThresholdDB, MaxThresholdDB))
}

// SetRatio sets the compression ratio, clamped to [1, 20].
func (s *Store) SetRatio(ratio float64) {
	s.ratio.Store(clampParam(ratio, MinRatio, MaxRatio))
}

// SetAttackMs sets the attack time in milliseconds, clamped to [0.1, 100].
func (s *Store) SetAttackMs(ms float64) {
	s.attack.Store(clampParam(ms, MinAttackMs, MaxAttackMs))
}

// SetReleaseMs sets the release time in milliseconds, clamped to [10, 1000].
func (s *Store) SetReleaseMs(ms float64) {
	s.release.Store(clampParam(ms, MinReleaseMs, MaxReleaseMs))
}

// SetFatPercent sets the saturation amount, clamped to [0, 100].
func (s *Store) SetFatPercent(percent float64) {
	s.fat.Store(clampParam(percent, MinFatPercent, MaxFatPercent))
}

// SetOutputDB sets the output trim in dB, clamped to [-12, 12].
func (s *Store) SetOutputDB(dB float64) {
	s.output.Store(clampParam(dB, MinOutputDB, MaxOutputDB))
}

// SetMixPercent sets the wet/dry blend, clamped to [0, 100].
func (s *Store) SetMixPercent(percent float64) {
	s.mix.Store(clampParam(percent, MinMixPercent, MaxMixPercent))
}

// Snapshot reads all seven parameters. Never blocks.
func (s *Store) Snapshot() Parameters {
	return Parameters{
		ThresholdDB: s.threshold.Load(),
		Ratio:       s.ratio.Load(),
		AttackMs:    s.attack.Load(),
		ReleaseMs:   s.release.Load(),
		FatPercent:  s.fat.Load(),
		OutputDB:    s.output.Load(),
		MixPercent:  s.mix.Load(),
	}
}

func clampParam(v, min, max float64) float64 {
	if !(v > min) { // NaN lands here
		return min
	}
	if v > max {
		return max
	}

	return v
}
