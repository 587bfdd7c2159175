package saturation

import "math"

// onePoleLowPass is a first-order lowpass used for the band split and as the
// building block of the one-pole highpass.
type onePoleLowPass struct {
	enabled bool
	alpha   float64
	state   float64
}

func (f *onePoleLowPass) Configure(cutoffHz, sampleRate float64) {
	if cutoffHz <= 0 || sampleRate <= 0 {
		f.enabled = false
		f.alpha = 0
		f.state = 0

		return
	}

	f.enabled = true
	f.alpha = 1.0 - math.Exp(-2.0*math.Pi*cutoffHz/sampleRate)
}

func (f *onePoleLowPass) Process(x float64) float64 {
	if !f.enabled {
		return x
	}

	f.state += f.alpha * (x - f.state)

	return f.state
}

func (f *onePoleLowPass) Reset() {
	f.state = 0
}

// onePoleHighPass is the lowpass complement: x minus its lowpassed copy.
type onePoleHighPass struct {
	enabled bool
	lp      onePoleLowPass
}

func (f *onePoleHighPass) Configure(cutoffHz, sampleRate float64) {
	if cutoffHz <= 0 || sampleRate <= 0 {
		f.enabled = false
		f.lp.enabled = false
		f.lp.alpha = 0
		f.lp.state = 0

		return
	}

	f.enabled = true
	f.lp.Configure(cutoffHz, sampleRate)
}

func (f *onePoleHighPass) Process(x float64) float64 {
	if !f.enabled {
		return x
	}

	return x - f.lp.Process(x)
}

func (f *onePoleHighPass) Reset() {
	f.lp.Reset()
}
