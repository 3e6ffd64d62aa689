package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-limiter/dsp/core"
)

// Generator creates deterministic test signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{
		cfg:  core.ApplyProcessorOptions(opts...),
		seed: 1,
	}
}

// NewGeneratorWithOptions creates a generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates a sine wave with the given peak amplitude.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Constant generates a constant-valued signal. Constant program material has
// an RMS level equal to its amplitude, which makes loudness assertions exact.
func (g *Generator) Constant(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("constant samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	for i := range out {
		out[i] = amplitude
	}
	return out, nil
}

// LevelStep generates a constant signal that switches from amplitudeA to
// amplitudeB at switchSample, for exercising attack and release behavior.
func (g *Generator) LevelStep(amplitudeA, amplitudeB float64, switchSample, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("level step samples must be > 0: %d", samples)
	}
	if switchSample < 0 || switchSample > samples {
		return nil, fmt.Errorf("level step switch must be in [0, %d]: %d", samples, switchSample)
	}
	out := make([]float64, samples)
	for i := range out {
		if i < switchSample {
			out[i] = amplitudeA
		} else {
			out[i] = amplitudeB
		}
	}
	return out, nil
}

// ToneBurst generates silence with a sine burst of burstLen samples starting
// at burstStart, for transient and lookahead tests.
func (g *Generator) ToneBurst(freqHz, amplitude float64, burstStart, burstLen, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("tone burst samples must be > 0: %d", samples)
	}
	if burstStart < 0 || burstLen < 0 || burstStart+burstLen > samples {
		return nil, fmt.Errorf("tone burst range [%d, %d) out of bounds for %d samples",
			burstStart, burstStart+burstLen, samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("tone burst sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := 0; i < burstLen; i++ {
		out[burstStart+i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out, nil
}
