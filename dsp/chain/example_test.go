package chain_test

import (
	"fmt"

	"github.com/cwbudde/algo-pressor/dsp/chain"
	"github.com/cwbudde/algo-pressor/internal/testutil"
)

func ExampleChain() {
	c, err := chain.New()
	if err != nil {
		panic(err)
	}
	if err := c.Prepare(44100, 512); err != nil {
		panic(err)
	}

	// A quiet tone stays below the default -20 dB threshold.
	tone := testutil.DeterministicSine(441, 44100, 0.05, 512)
	block := [][]float64{
		append([]float64(nil), tone...),
		append([]float64(nil), tone...),
	}
	c.Process(block)

	inL, _ := c.InputLevelDB()
	fmt.Printf("input: %.0f dB\n", inL)
	fmt.Printf("gain reduction: %.1f dB\n", c.GainReductionDB())
	// Output:
	// input: -26 dB
	// gain reduction: 0.0 dB
}
