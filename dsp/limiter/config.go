package limiter

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-limiter/dsp/core"
)

const (
	// Default engine parameters
	DefaultSampleRate       = 48000.0
	DefaultChannels         = 2
	DefaultMaxBlockSize     = 1024
	DefaultThresholdDB      = -10.0
	DefaultAttackSeconds    = 0.015
	DefaultReleaseSeconds   = 0.080
	DefaultRMSWindowSeconds = 0.050
	DefaultLookaheadSeconds = 0.010

	// Parameter validation ranges
	minAttackSeconds    = 0.0001
	maxAttackSeconds    = 1.0
	minReleaseSeconds   = 0.001
	maxReleaseSeconds   = 5.0
	minRMSWindowSeconds = 0.001
	maxRMSWindowSeconds = 1.0
	maxLookaheadSeconds = 0.2
	maxEngineChannels   = 8

	// loudnessFloorDB clamps zero or denormal RMS instead of propagating
	// a non-finite dB value.
	loudnessFloorDB = -100.0
)

// Config holds the full engine configuration.
//
// SampleRate, Channels, MaxBlockSize, RMSWindowSeconds and LookaheadSeconds
// are structural: changing any of them through Configure reinitializes every
// channel's buffers (data loss is expected). ThresholdDB, AttackSeconds and
// ReleaseSeconds are non-structural and take effect without a buffer reset.
type Config struct {
	SampleRate   float64
	Channels     int
	MaxBlockSize int

	ThresholdDB      float64
	AttackSeconds    float64
	ReleaseSeconds   float64
	RMSWindowSeconds float64
	LookaheadSeconds float64
}

// DefaultConfig returns a stereo configuration with production defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:       DefaultSampleRate,
		Channels:         DefaultChannels,
		MaxBlockSize:     DefaultMaxBlockSize,
		ThresholdDB:      DefaultThresholdDB,
		AttackSeconds:    DefaultAttackSeconds,
		ReleaseSeconds:   DefaultReleaseSeconds,
		RMSWindowSeconds: DefaultRMSWindowSeconds,
		LookaheadSeconds: DefaultLookaheadSeconds,
	}
}

func (c Config) validate() error {
	if c.SampleRate <= 0 || !core.IsFinite(c.SampleRate) {
		return fmt.Errorf("%w: sample rate must be positive and finite: %f",
			ErrInvalidParameter, c.SampleRate)
	}

	if c.Channels < 1 || c.Channels > maxEngineChannels {
		return fmt.Errorf("%w: channels must be in [1, %d]: %d",
			ErrInvalidParameter, maxEngineChannels, c.Channels)
	}

	if c.MaxBlockSize < 1 {
		return fmt.Errorf("%w: max block size must be >= 1: %d",
			ErrInvalidParameter, c.MaxBlockSize)
	}

	if !core.IsFinite(c.ThresholdDB) {
		return fmt.Errorf("%w: threshold must be finite: %f",
			ErrInvalidParameter, c.ThresholdDB)
	}

	if c.AttackSeconds < minAttackSeconds || c.AttackSeconds > maxAttackSeconds ||
		!core.IsFinite(c.AttackSeconds) {
		return fmt.Errorf("%w: attack must be in [%f, %f]: %f",
			ErrInvalidParameter, minAttackSeconds, maxAttackSeconds, c.AttackSeconds)
	}

	if c.ReleaseSeconds < minReleaseSeconds || c.ReleaseSeconds > maxReleaseSeconds ||
		!core.IsFinite(c.ReleaseSeconds) {
		return fmt.Errorf("%w: release must be in [%f, %f]: %f",
			ErrInvalidParameter, minReleaseSeconds, maxReleaseSeconds, c.ReleaseSeconds)
	}

	if c.RMSWindowSeconds < minRMSWindowSeconds || c.RMSWindowSeconds > maxRMSWindowSeconds ||
		!core.IsFinite(c.RMSWindowSeconds) {
		return fmt.Errorf("%w: rms window must be in [%f, %f]: %f",
			ErrInvalidParameter, minRMSWindowSeconds, maxRMSWindowSeconds, c.RMSWindowSeconds)
	}

	if c.LookaheadSeconds < 0 || c.LookaheadSeconds > maxLookaheadSeconds ||
		!core.IsFinite(c.LookaheadSeconds) {
		return fmt.Errorf("%w: lookahead must be in [0, %f]: %f",
			ErrInvalidParameter, maxLookaheadSeconds, c.LookaheadSeconds)
	}

	return nil
}

// rmsWindowSamples returns the RMS window length N in samples, at least 1.
func (c Config) rmsWindowSamples() int {
	return max(int(math.Round(c.RMSWindowSeconds*c.SampleRate)), 1)
}

// lookaheadSamples returns the delay line length M in samples.
func (c Config) lookaheadSamples() int {
	return max(int(math.Round(c.LookaheadSeconds*c.SampleRate)), 0)
}

// structuralEquals reports whether two configurations share the same buffer
// layout, so channel state can survive the change.
func (c Config) structuralEquals(o Config) bool {
	return c.SampleRate == o.SampleRate &&
		c.Channels == o.Channels &&
		c.MaxBlockSize == o.MaxBlockSize &&
		c.rmsWindowSamples() == o.rmsWindowSamples() &&
		c.lookaheadSamples() == o.lookaheadSamples()
}
