package level

import (
	"math"

	"github.com/cwbudde/algo-limiter/dsp/core"
)

// MeterConfig defines configuration for the sliding level meter.
type MeterConfig struct {
	core.ProcessorConfig
	WindowSeconds float64
	HoldSamples   int
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns sensible defaults: a 300 ms RMS window and a
// 1.5 s peak hold.
func DefaultMeterConfig() MeterConfig {
	cfg := MeterConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		WindowSeconds:   0.3,
	}
	cfg.HoldSamples = int(1.5 * cfg.SampleRate)

	return cfg
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) MeterOption {
	return func(cfg *MeterConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
			cfg.HoldSamples = int(1.5 * sampleRate)
		}
	}
}

// WithWindow sets the sliding RMS window duration in seconds.
func WithWindow(seconds float64) MeterOption {
	return func(cfg *MeterConfig) {
		if seconds > 0 {
			cfg.WindowSeconds = seconds
		}
	}
}

// WithHold sets the peak hold duration in seconds.
func WithHold(seconds float64) MeterOption {
	return func(cfg *MeterConfig) {
		if seconds >= 0 {
			cfg.HoldSamples = int(seconds * cfg.SampleRate)
		}
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Meter tracks a sliding-window RMS level and a held peak over a stream of
// sample blocks.
type Meter struct {
	cfg MeterConfig

	squares  []float64
	writeIdx int
	filled   int
	sum      float64

	heldPeak     float64
	samplesSince int
}

// NewMeter creates a streaming level meter.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	window := max(int(math.Round(cfg.WindowSeconds*cfg.SampleRate)), 1)

	return &Meter{
		cfg:     cfg,
		squares: make([]float64, window),
	}
}

// Process feeds one block of samples into the meter.
func (m *Meter) Process(block []float64) {
	for _, x := range block {
		square := x * x

		if m.filled == len(m.squares) {
			m.sum -= m.squares[m.writeIdx]
		} else {
			m.filled++
		}

		m.squares[m.writeIdx] = square
		m.sum += square

		m.writeIdx++
		if m.writeIdx >= len(m.squares) {
			m.writeIdx = 0
		}

		abs := math.Abs(x)
		if abs >= m.heldPeak || m.samplesSince > m.cfg.HoldSamples {
			m.heldPeak = abs
			m.samplesSince = 0
		} else {
			m.samplesSince++
		}
	}
}

// RMSDB returns the current sliding-window RMS level in dBFS.
func (m *Meter) RMSDB() float64 {
	if m.filled == 0 {
		return FloorDB
	}

	mean := m.sum / float64(m.filled)
	if mean <= 0 {
		return FloorDB
	}

	return core.LinearToDBFloor(math.Sqrt(mean), FloorDB)
}

// PeakDB returns the held peak level in dBFS.
func (m *Meter) PeakDB() float64 {
	return core.LinearToDBFloor(m.heldPeak, FloorDB)
}

// Reset clears meter state.
func (m *Meter) Reset() {
	core.Zero(m.squares)
	m.writeIdx = 0
	m.filled = 0
	m.sum = 0
	m.heldPeak = 0
	m.samplesSince = 0
}
