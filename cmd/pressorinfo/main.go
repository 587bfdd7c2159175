// Command pressorinfo prints steady-state processor behavior for a set of
// compressor settings: a gain-reduction table over input level, and the
// harmonic fingerprint of the saturation stages over the fat control.
//
// Usage:
//
//	pressorinfo [flags]
//
// Examples:
//
//	pressorinfo
//	pressorinfo -threshold -30 -ratio 8
//	pressorinfo -mode fat -freq 220
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-pressor/dsp/chain"
	"github.com/cwbudde/algo-pressor/measure/harmonics"
)

const analysisSamples = 8192

func main() {
	rate := flag.Float64("rate", 44100, "sample rate in Hz")
	blockLen := flag.Int("block", 512, "processing block length in samples")
	freq := flag.Float64("freq", 441, "test tone frequency in Hz")
	threshold := flag.Float64("threshold", -20, "threshold in dB")
	ratio := flag.Float64("ratio", 4, "compression ratio")
	attack := flag.Float64("attack", 10, "attack time in ms")
	release := flag.Float64("release", 100, "release time in ms")
	fat := flag.Float64("fat", 50, "saturation amount in percent")
	output := flag.Float64("output", 0, "output trim in dB")
	mix := flag.Float64("mix", 100, "wet/dry mix in percent")
	mode := flag.String("mode", "level", "sweep mode: level or fat")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pressorinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints steady-state compressor behavior for one set of controls.\n")
		fmt.Fprintf(os.Stderr, "Mode \"level\" sweeps the input level; \"fat\" sweeps the saturation\n")
		fmt.Fprintf(os.Stderr, "amount and reports the harmonic fingerprint.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	params := chain.Parameters{
		ThresholdDB: *threshold,
		Ratio:       *ratio,
		AttackMs:    *attack,
		ReleaseMs:   *release,
		FatPercent:  *fat,
		OutputDB:    *output,
		MixPercent:  *mix,
	}

	switch *mode {
	case "level":
		if err := printLevelSweep(params, *rate, *blockLen, *freq); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "fat":
		if err := printFatSweep(params, *rate, *blockLen, *freq); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unknown mode %q (use level or fat)\n", *mode)
		os.Exit(1)
	}
}

// runSteady processes a sine at the given peak level until the envelope and
// meters settle, returning the chain and the last second of output.
func runSteady(params chain.Parameters, sampleRate float64, blockLen int, freq, peak float64) (*chain.Chain, []float64, error) {
	c, err := chain.New(chain.WithInitialParameters(params))
	if err != nil {
		return nil, nil, err
	}
	if err := c.Prepare(sampleRate, blockLen); err != nil {
		return nil, nil, err
	}

	totalSamples := int(2 * sampleRate)
	step := 2 * math.Pi * freq / sampleRate

	out := make([]float64, 0, totalSamples)
	block := [][]float64{make([]float64, blockLen), make([]float64, blockLen)}
	for start := 0; start+blockLen <= totalSamples; start += blockLen {
		for i := 0; i < blockLen; i++ {
			s := peak * math.Sin(step*float64(start+i))
			block[0][i] = s
			block[1][i] = s
		}
		c.Process(block)
		out = append(out, block[0]...)
	}

	return c, out[len(out)-analysisSamples:], nil
}

func printLevelSweep(params chain.Parameters, sampleRate float64, blockLen int, freq float64) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "In [dBFS]\tMeter In [dB]\tGR [dB]\tMeter Out [dB]\n")
	fmt.Fprintf(tw, "---------\t-------------\t-------\t--------------\n")

	for levelDB := -30.0; levelDB <= 0.0; levelDB += 3 {
		peak := math.Pow(10, levelDB/20)
		c, _, err := runSteady(params, sampleRate, blockLen, freq, peak)
		if err != nil {
			return err
		}

		inL, _ := c.InputLevelDB()
		outL, _ := c.OutputLevelDB()
		fmt.Fprintf(tw, "%.0f\t%.1f\t%.1f\t%.1f\n", levelDB, inL, c.GainReductionDB(), outL)
	}

	return tw.Flush()
}

func printFatSweep(params chain.Parameters, sampleRate float64, blockLen int, freq float64) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Fat [%%]\tTHD [%%]\tEven [%%]\tOdd [%%]\tGR [dB]\n")
	fmt.Fprintf(tw, "-------\t-------\t--------\t-------\t-------\n")

	for fatPercent := 0.0; fatPercent <= 100.0; fatPercent += 20 {
		p := params
		p.FatPercent = fatPercent

		c, steady, err := runSteady(p, sampleRate, blockLen, freq, 0.8)
		if err != nil {
			return err
		}

		a := harmonics.Analyze(steady, harmonics.Config{
			SampleRate:    sampleRate,
			FundamentalHz: freq,
		})

		fmt.Fprintf(tw, "%.0f\t%.2f\t%.2f\t%.2f\t%.1f\n",
			fatPercent, a.THD*100, a.EvenLevel*100, a.OddLevel*100, c.GainReductionDB())
	}

	return tw.Flush()
}
