// Command limitdemo runs the lookahead limiter offline over a generated
// program signal and prints level, gain and gain-modulation statistics.
//
// Usage:
//
//	limitdemo [flags]
//
// Examples:
//
//	limitdemo
//	limitdemo -threshold -20 -amp -6
//	limitdemo -signal noise -duration 2
//	limitdemo -lookahead 0 -attack 0.001
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-limiter/dsp/core"
	"github.com/cwbudde/algo-limiter/dsp/limiter"
	"github.com/cwbudde/algo-limiter/dsp/signal"
	"github.com/cwbudde/algo-limiter/measure/level"
	"github.com/cwbudde/algo-limiter/measure/modspectrum"
)

func main() {
	var (
		rate      = flag.Float64("rate", 48000, "sample rate in Hz")
		blockSize = flag.Int("block", 128, "processing block size in frames")
		duration  = flag.Float64("duration", 1.0, "program duration in seconds")
		sigType   = flag.String("signal", "sine", "program signal: sine or noise")
		freq      = flag.Float64("freq", 440, "sine frequency in Hz")
		ampDB     = flag.Float64("amp", -6, "program peak amplitude in dBFS")

		threshold = flag.Float64("threshold", -20, "limiter ceiling in dBFS")
		attack    = flag.Float64("attack", 0.015, "attack time constant in seconds")
		release   = flag.Float64("release", 0.080, "release time constant in seconds")
		window    = flag.Float64("window", 0.050, "RMS window in seconds")
		lookahead = flag.Float64("lookahead", 0.010, "lookahead in seconds")
	)

	flag.Parse()

	if err := run(*rate, *blockSize, *duration, *sigType, *freq, *ampDB,
		*threshold, *attack, *release, *window, *lookahead); err != nil {
		fmt.Fprintln(os.Stderr, "limitdemo:", err)
		os.Exit(1)
	}
}

func run(rate float64, blockSize int, duration float64, sigType string,
	freq, ampDB, threshold, attack, release, window, lookahead float64) error {
	samples := int(duration * rate)
	if samples < blockSize || blockSize < 1 {
		return fmt.Errorf("duration %.3fs too short for block size %d", duration, blockSize)
	}

	gen := signal.NewGenerator(core.WithSampleRate(rate))
	amp := core.DBToLinear(ampDB)

	var (
		program []float64
		err     error
	)

	switch sigType {
	case "sine":
		program, err = gen.Sine(freq, amp, samples)
	case "noise":
		program, err = gen.WhiteNoise(amp, samples)
	default:
		return fmt.Errorf("unknown signal type %q", sigType)
	}

	if err != nil {
		return err
	}

	eng, err := limiter.New(limiter.Config{
		SampleRate:       rate,
		Channels:         1,
		MaxBlockSize:     blockSize,
		ThresholdDB:      threshold,
		AttackSeconds:    attack,
		ReleaseSeconds:   release,
		RMSWindowSeconds: window,
		LookaheadSeconds: lookahead,
	})
	if err != nil {
		return err
	}

	output := make([]float64, 0, samples)
	gainTrace := make([]float64, 0, samples/blockSize+1)
	out := make([]float64, blockSize)

	for start := 0; start+blockSize <= samples; start += blockSize {
		in := program[start : start+blockSize]
		if err := eng.ProcessBlock([][]float64{out}, [][]float64{in}); err != nil {
			return err
		}

		output = append(output, out...)
		gainTrace = append(gainTrace, eng.ChannelGain(0))
	}

	// The gain trace is sampled once per block.
	mod, err := modspectrum.Analyze(gainTrace, modspectrum.Config{
		SampleRate: rate / float64(blockSize),
		FFTSize:    1024,
	})
	if err != nil {
		return err
	}

	metrics := eng.Metrics()
	lookaheadMs := float64(eng.LookaheadSamples()) / rate * 1000

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "input\tpeak %.2f dB\trms %.2f dB\n", level.PeakDB(program), level.RMSDB(program))
	fmt.Fprintf(w, "output\tpeak %.2f dB\trms %.2f dB\n", level.PeakDB(output), level.RMSDB(output))
	fmt.Fprintf(w, "gain\tfinal %.4f\treduction %.2f dB\n",
		metrics.Channels[0].Gain, -core.LinearToDBFloor(metrics.Channels[0].Gain, level.FloorDB))
	fmt.Fprintf(w, "latency\t%d samples\t%.2f ms\n", eng.LookaheadSamples(), lookaheadMs)
	fmt.Fprintf(w, "modulation\tpeak %.2f Hz\t%.1f dB\n", mod.PeakFreqHz, mod.PeakDB)
	fmt.Fprintf(w, "blocks\t%d\t\n", metrics.Blocks)

	return w.Flush()
}
