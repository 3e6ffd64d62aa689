package limiter

import (
	"fmt"
	"math"
)

// snapshot is an immutable, fully-derived view of the tunable parameters.
// The control side builds and publishes it; the real-time side adopts the
// latest one at block boundaries. A snapshot is never mutated after it is
// stored, so the reader can never observe a half-written update.
type snapshot struct {
	version uint64

	thresholdDB  float64
	attackCoeff  float64
	releaseCoeff float64

	rmsWindowSamples int
	invRMSWindow     float64

	// rmsRings carries control-side allocated replacement detector rings
	// (one per channel) when the window length changed, so adoption on the
	// real-time side stays allocation-free. Nil otherwise.
	rmsRings [][]float64
}

// smoothingCoeff converts a time constant in seconds to a one-pole
// coefficient: 1 - exp(-1 / (seconds * sampleRate)).
func smoothingCoeff(seconds, sampleRate float64) float64 {
	return 1.0 - math.Exp(-1.0/(seconds*sampleRate))
}

func buildSnapshot(cfg Config, version uint64) *snapshot {
	n := cfg.rmsWindowSamples()

	return &snapshot{
		version:          version,
		thresholdDB:      cfg.ThresholdDB,
		attackCoeff:      smoothingCoeff(cfg.AttackSeconds, cfg.SampleRate),
		releaseCoeff:     smoothingCoeff(cfg.ReleaseSeconds, cfg.SampleRate),
		rmsWindowSamples: n,
		invRMSWindow:     1.0 / float64(n),
	}
}

// ParamUpdate is the parameter-channel message. Nil fields leave the current
// value unchanged.
type ParamUpdate struct {
	ThresholdDB      *float64
	AttackSeconds    *float64
	ReleaseSeconds   *float64
	RMSWindowSeconds *float64
}

// Update validates the message against the current configuration and, on
// success, publishes a new parameter snapshot for the processing side to
// adopt at the next block boundary. On error nothing is published and the
// previous configuration stays in effect.
//
// Update never blocks the real-time path. It is safe to call from a control
// goroutine while ProcessBlock runs; concurrent Update calls serialize among
// themselves.
func (e *Engine) Update(u ParamUpdate) error {
	e.ctrlMu.Lock()
	defer e.ctrlMu.Unlock()

	cfg := e.target
	if u.ThresholdDB != nil {
		cfg.ThresholdDB = *u.ThresholdDB
	}

	if u.AttackSeconds != nil {
		cfg.AttackSeconds = *u.AttackSeconds
	}

	if u.ReleaseSeconds != nil {
		cfg.ReleaseSeconds = *u.ReleaseSeconds
	}

	if u.RMSWindowSeconds != nil {
		cfg.RMSWindowSeconds = *u.RMSWindowSeconds
	}

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("update rejected: %w", err)
	}

	e.version++
	snap := buildSnapshot(cfg, e.version)

	// A window-length change is structural: ship replacement detector
	// rings so the processing side can swap them in without allocating.
	// The rings stay attached to every later snapshot of the same window
	// length, because the processing side only ever sees the newest
	// snapshot and may have skipped the one that introduced the change.
	if snap.rmsWindowSamples != e.publishedWindow {
		rings := make([][]float64, cfg.Channels)
		for i := range rings {
			rings[i] = make([]float64, snap.rmsWindowSamples)
		}

		e.pendingRings = rings
	}

	if len(e.pendingRings) > 0 && len(e.pendingRings[0]) == snap.rmsWindowSamples {
		snap.rmsRings = e.pendingRings
	}

	e.target = cfg
	e.publishedWindow = snap.rmsWindowSamples
	e.pending.Store(snap)

	return nil
}

// adoptPending installs the most recently published snapshot, if any. Called
// at the start of each processed block, never mid-block.
func (e *Engine) adoptPending() {
	snap := e.pending.Load()
	if snap == nil || snap == e.active {
		return
	}

	if snap.rmsRings != nil && snap.rmsWindowSamples != len(e.channels[0].rmsSquares) {
		for i := range e.channels {
			e.channels[i].adoptRMSRing(snap.rmsRings[i])
		}
	}

	e.active = snap
}

// Configure validates and applies a full configuration. Structural changes
// (sample rate, channel count, block size, RMS window, lookahead)
// reinitialize every channel's buffers; non-structural changes keep buffer
// contents and fill state untouched. On error the previous configuration
// remains in effect.
//
// Configure is a control-path operation: unlike Update it must not run
// concurrently with ProcessBlock. Quiesce the stream first.
func (e *Engine) Configure(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	e.ctrlMu.Lock()
	defer e.ctrlMu.Unlock()

	// Compare against the actual buffer state, not just the last Configure:
	// an adopted Update may have swapped the detector rings since, leaving
	// e.cfg with a stale window length.
	if !cfg.structuralEquals(e.cfg) ||
		cfg.rmsWindowSamples() != len(e.channels[0].rmsSquares) {
		e.rebuild(cfg)
	}

	e.version++
	snap := buildSnapshot(cfg, e.version)

	e.cfg = cfg
	e.target = cfg
	e.publishedWindow = snap.rmsWindowSamples
	e.pendingRings = nil
	e.active = snap
	e.pending.Store(snap)

	return nil
}

// rebuild reallocates channel state and scratch for a structural change.
func (e *Engine) rebuild(cfg Config) {
	m := cfg.lookaheadSamples()
	n := cfg.rmsWindowSamples()

	e.channels = make([]channelState, cfg.Channels)
	for i := range e.channels {
		e.channels[i] = newChannelState(m, n)
	}

	e.meters = make([]channelMeter, cfg.Channels)
	for i := range e.meters {
		e.meters[i].reset()
	}

	e.scratchDelayed = make([]float64, cfg.MaxBlockSize)
	e.scratchGain = make([]float64, cfg.MaxBlockSize)
}

// Config returns the configuration most recently accepted by Configure or
// Update.
func (e *Engine) Config() Config {
	e.ctrlMu.Lock()
	defer e.ctrlMu.Unlock()

	return e.target
}
