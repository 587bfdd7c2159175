package chain

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pressor/dsp/core"
	"github.com/cwbudde/algo-pressor/dsp/dynamics"
	"github.com/cwbudde/algo-pressor/dsp/saturation"
)

const maxChannels = 2

// Option mutates construction-time chain settings.
type Option func(*config) error

type config struct {
	initial         Parameters
	tubeOptions     []saturation.TubeOption
	transformerOpts []saturation.TransformerOption
	detectorOptions []dynamics.DetectorOption
	kneeWidthDB     float64
}

// WithInitialParameters sets the parameter values the chain starts with
// instead of DefaultParameters. Values are clamped.
func WithInitialParameters(p Parameters) Option {
	return func(cfg *config) error {
		cfg.initial = p.Clamped()
		return nil
	}
}

// WithKneeWidth overrides the 6 dB soft-knee width, in [0, 24] dB.
func WithKneeWidth(kneeDB float64) Option {
	return func(cfg *config) error {
		if kneeDB < 0 || kneeDB > 24 || !core.IsFinite(kneeDB) {
			return fmt.Errorf("chain knee width must be in [0, 24] dB: %f", kneeDB)
		}
		cfg.kneeWidthDB = kneeDB
		return nil
	}
}

// WithTubeOptions forwards options to the pre-saturation stage.
func WithTubeOptions(opts ...saturation.TubeOption) Option {
	return func(cfg *config) error {
		cfg.tubeOptions = append(cfg.tubeOptions, opts...)
		return nil
	}
}

// WithTransformerOptions forwards options to the post-saturation stage.
func WithTransformerOptions(opts ...saturation.TransformerOption) Option {
	return func(cfg *config) error {
		cfg.transformerOpts = append(cfg.transformerOpts, opts...)
		return nil
	}
}

// WithDetectorOptions forwards options to the level detector.
func WithDetectorOptions(opts ...dynamics.DetectorOption) Option {
	return func(cfg *config) error {
		cfg.detectorOptions = append(cfg.detectorOptions, opts...)
		return nil
	}
}

// Chain is the complete processor. One Process call runs, in order: input
// metering, tube pre-saturation, the feed-forward gain-reduction loop
// (detector, follower, gain computer), transformer post-saturation, output
// trim with wet/dry mix, and output metering.
//
// Prepare allocates and must not run concurrently with Process. Process
// itself is allocation-free and lock-free; parameters cross in through
// Params() and meters cross out through the accessor methods, both atomic.
type Chain struct {
	sampleRate float64
	maxBlock   int
	prepared   bool

	params *Store
	meters meters

	detector    *dynamics.Detector
	follower    *dynamics.Follower
	computer    *dynamics.GainComputer
	tube        *saturation.Tube
	transformer *saturation.Transformer

	thresholdSm smoother
	ratioSm     smoother
	fatSm       smoother
	outputSm    smoother
	mixSm       smoother

	// Last values pushed into the follower, to skip recomputing its
	// coefficients on blocks where the times did not move.
	appliedAttackMs  float64
	appliedReleaseMs float64

	detectorOptions []dynamics.DetectorOption

	// Per-block scratch, sized in Prepare.
	dry   [][]float64
	gains []float64
}

// New creates an unprepared chain. Call Prepare before processing.
func New(opts ...Option) (*Chain, error) {
	cfg := config{
		initial:     DefaultParameters(),
		kneeWidthDB: 6,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	tube, err := saturation.NewTube(cfg.tubeOptions...)
	if err != nil {
		return nil, err
	}

	transformer, err := saturation.NewTransformer(cfg.transformerOpts...)
	if err != nil {
		return nil, err
	}

	computer := dynamics.NewGainComputer()
	computer.SetKneeWidth(cfg.kneeWidthDB)

	c := &Chain{
		params:          NewStore(cfg.initial),
		computer:        computer,
		tube:            tube,
		transformer:     transformer,
		detectorOptions: cfg.detectorOptions,
	}
	c.meters.reset(core.SilenceFloorDB)

	return c, nil
}

// Params returns the parameter store. Writes from any single control thread
// are picked up by the next Process call.
func (c *Chain) Params() *Store { return c.params }

// SampleRate returns the prepared sample rate in Hz, or zero before Prepare.
func (c *Chain) SampleRate() float64 { return c.sampleRate }

// MaxBlockSamples returns the prepared maximum block length.
func (c *Chain) MaxBlockSamples() int { return c.maxBlock }

// Prepare (re)builds all filter and detector state for the sample rate and
// sizes scratch for the maximum block length. Allocates; must not be called
// concurrently with Process. On error the chain keeps its previous state: if
// it was never prepared, Process passes audio through untouched.
func (c *Chain) Prepare(sampleRate float64, maxBlockSamples int) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("chain sample rate must be positive and finite: %f", sampleRate)
	}
	if maxBlockSamples <= 0 {
		return fmt.Errorf("chain max block samples must be positive: %d", maxBlockSamples)
	}

	detector, err := dynamics.NewDetector(sampleRate, c.detectorOptions...)
	if err != nil {
		return err
	}

	follower, err := dynamics.NewFollower(sampleRate)
	if err != nil {
		return err
	}

	if err := c.tube.Prepare(sampleRate, maxBlockSamples); err != nil {
		return err
	}
	if err := c.transformer.Prepare(sampleRate); err != nil {
		return err
	}

	c.detector = detector
	c.follower = follower
	c.sampleRate = sampleRate
	c.maxBlock = maxBlockSamples

	p := c.params.Snapshot()

	c.follower.SetAttack(p.AttackMs)
	c.follower.SetRelease(p.ReleaseMs)
	c.appliedAttackMs = c.follower.Attack()
	c.appliedReleaseMs = c.follower.Release()

	c.thresholdSm.configure(sampleRate, thresholdSmoothingSeconds)
	c.ratioSm.configure(sampleRate, ratioSmoothingSeconds)
	c.fatSm.configure(sampleRate, fatSmoothingSeconds)
	c.outputSm.configure(sampleRate, outputSmoothingSeconds)
	c.mixSm.configure(sampleRate, mixSmoothingSeconds)

	c.thresholdSm.snapTo(p.ThresholdDB)
	c.ratioSm.snapTo(p.Ratio)
	c.fatSm.snapTo(p.FatPercent / 100)
	c.outputSm.snapTo(p.OutputDB)
	c.mixSm.snapTo(p.MixPercent / 100)

	c.dry = core.EnsureBlock(c.dry, maxChannels, maxBlockSamples)
	c.gains = core.EnsureLen(c.gains, maxBlockSamples)

	c.meters.reset(core.SilenceFloorDB)
	c.prepared = true

	return nil
}

// Reset clears all recursive state (detector window, envelope, filters,
// smoothing glides) without touching parameters or prepared configuration.
func (c *Chain) Reset() {
	if !c.prepared {
		return
	}

	c.detector.Reset()
	c.follower.Reset()
	c.tube.Reset()
	c.transformer.Reset()

	p := c.params.Snapshot()
	c.thresholdSm.snapTo(p.ThresholdDB)
	c.ratioSm.snapTo(p.Ratio)
	c.fatSm.snapTo(p.FatPercent / 100)
	c.outputSm.snapTo(p.OutputDB)
	c.mixSm.snapTo(p.MixPercent / 100)

	c.meters.reset(core.SilenceFloorDB)
}

// Process runs the chain over block in place. The block holds one or two
// channels of equal length; extra channels are ignored. Zero channels, zero
// samples, an unprepared chain, or a block longer than the prepared maximum
// leave the audio untouched. Never allocates, locks, errors, or panics.
func (c *Chain) Process(block [][]float64) {
	if !c.prepared || len(block) == 0 {
		return
	}

	channels := len(block)
	if channels > maxChannels {
		channels = maxChannels
	}

	samples := len(block[0])
	if samples == 0 || samples > c.maxBlock {
		return
	}

	p := c.params.Snapshot()
	c.applyParameters(p, samples)

	// Step 1: input meters.
	left := block[0][:samples]
	right := left
	if channels > 1 {
		right = block[1][:samples]
	}
	c.meters.inputL.Store(core.GainToDecibels(maxAbs(left), core.SilenceFloorDB))
	c.meters.inputR.Store(core.GainToDecibels(maxAbs(right), core.SilenceFloorDB))

	// The dry path is captured before any coloration so the mix control
	// blends against the untouched input.
	for ch := 0; ch < channels; ch++ {
		copy(c.dry[ch][:samples], block[ch][:samples])
	}

	// Step 2: tube pre-saturation.
	c.tube.ProcessBlock(block[:channels])

	// Step 3: gain-reduction loop. Detection is feed-forward, so the
	// per-sample gains are computed in one pass and applied per channel
	// as a block multiply.
	gains := c.gains[:samples]
	peakReduction := 0.0
	for i := 0; i < samples; i++ {
		r := left[i]
		if channels > 1 {
			r = right[i]
		}
		detection := c.detector.ProcessSample(left[i], r)
		envelope := c.follower.ProcessSample(detection)
		reduction := c.computer.Reduction(envelope)
		if reduction < peakReduction {
			peakReduction = reduction
		}
		gains[i] = core.DBToLinear(reduction)
	}
	for ch := 0; ch < channels; ch++ {
		vecmath.MulBlockInPlace(block[ch][:samples], gains)
	}
	c.meters.gainReduction.Store(-peakReduction)

	// Step 4: transformer post-saturation.
	c.transformer.ProcessBlock(block[:channels])

	// Step 5: per-sample output trim on the wet path, then wet/dry
	// crossfade. Trim and mix glide at audio rate to stay zipper-free.
	for i := 0; i < samples; i++ {
		trim := core.DBToLinear(c.outputSm.next())
		mix := c.mixSm.next()
		for ch := 0; ch < channels; ch++ {
			wet := block[ch][i] * trim
			block[ch][i] = wet*mix + c.dry[ch][i]*(1-mix)
		}
	}

	// Step 6: output meters.
	c.meters.outputL.Store(core.GainToDecibels(maxAbs(left), core.SilenceFloorDB))
	c.meters.outputR.Store(core.GainToDecibels(maxAbs(right), core.SilenceFloorDB))
}

// applyParameters advances the block-rate smoothers by the block length and
// pushes the results into the owning components.
func (c *Chain) applyParameters(p Parameters, samples int) {
	c.thresholdSm.setTarget(p.ThresholdDB)
	c.ratioSm.setTarget(p.Ratio)
	c.fatSm.setTarget(p.FatPercent / 100)
	c.outputSm.setTarget(p.OutputDB)
	c.mixSm.setTarget(p.MixPercent / 100)

	c.computer.SetThreshold(c.thresholdSm.advance(samples))
	c.computer.SetRatio(c.ratioSm.advance(samples))

	fat := c.fatSm.advance(samples)
	c.tube.SetDrive(fat)
	c.transformer.SetColor(fat)

	// Attack and release snap; the follower's ballistics are their own
	// smoothing. Recompute coefficients only on actual changes.
	if p.AttackMs != c.appliedAttackMs {
		c.follower.SetAttack(p.AttackMs)
		c.appliedAttackMs = c.follower.Attack()
	}
	if p.ReleaseMs != c.appliedReleaseMs {
		c.follower.SetRelease(p.ReleaseMs)
		c.appliedReleaseMs = c.follower.Release()
	}
}

// maxAbs returns the peak magnitude of data.
func maxAbs(data []float64) float64 {
	peak := 0.0
	for _, x := range data {
		if x < 0 {
			x = -x
		}
		if x > peak {
			peak = x
		}
	}

	return peak
}
