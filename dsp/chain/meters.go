package chain

// meters holds the five metering scalars written by the audio thread every
// block and polled by the UI at its own rate. Level meters are peak dB with
// a -60 dB floor; gain reduction is a positive magnitude in dB.
type meters struct {
	inputL        atomicFloat64
	inputR        atomicFloat64
	outputL       atomicFloat64
	outputR       atomicFloat64
	gainReduction atomicFloat64
}

func (m *meters) reset(floorDB float64) {
	m.inputL.Store(floorDB)
	m.inputR.Store(floorDB)
	m.outputL.Store(floorDB)
	m.outputR.Store(floorDB)
	m.gainReduction.Store(0)
}

// InputLevelDB returns the per-channel input peak of the last processed
// block in dB, floored at -60. Safe to call concurrently with Process.
func (c *Chain) InputLevelDB() (left, right float64) {
	return c.meters.inputL.Load(), c.meters.inputR.Load()
}

// OutputLevelDB returns the per-channel output peak of the last processed
// block in dB, floored at -60. Safe to call concurrently with Process.
func (c *Chain) OutputLevelDB() (left, right float64) {
	return c.meters.outputL.Load(), c.meters.outputR.Load()
}

// GainReductionDB returns the largest gain reduction applied during the last
// processed block as a positive dB magnitude. Safe to call concurrently with
// Process.
func (c *Chain) GainReductionDB() float64 {
	return c.meters.gainReduction.Load()
}
