package limiter

import (
	"github.com/cwbudde/algo-limiter/dsp/core"
)

// channelState holds the per-channel processing state. Channels are fully
// independent; nothing here is shared.
type channelState struct {
	// Lookahead delay line of M raw (pre-gain) samples.
	delay    []float64
	writePos int
	filled   int

	// Sliding-window RMS detector: ring of squared samples plus a running
	// sum, kept consistent by evict-then-add on every step.
	rmsSquares []float64
	rmsIndex   int
	rmsFilled  int
	rmsSum     float64

	// Smoothed linear gain in (0, 1]. 1.0 is unity; the limiter only
	// ever reduces.
	gain float64
}

func newChannelState(lookaheadSamples, rmsWindowSamples int) channelState {
	return channelState{
		delay:      make([]float64, lookaheadSamples),
		rmsSquares: make([]float64, rmsWindowSamples),
		gain:       1.0,
	}
}

// step runs the per-sample chain in analysis-before-delay order and returns
// the pre-gain output sample together with the gain to apply to it.
func (c *channelState) step(x float64, s *snapshot) (out, gain float64) {
	// Write the raw sample into the delay line, evicting the sample
	// written one lookahead period ago.
	var delayed float64

	m := len(c.delay)
	if m > 0 {
		delayed = c.delay[c.writePos]
		c.delay[c.writePos] = x
	}

	// Sliding-window RMS of the current (not delayed) sample.
	square := x * x
	if c.rmsFilled == len(c.rmsSquares) {
		c.rmsSum -= c.rmsSquares[c.rmsIndex]
	} else {
		c.rmsFilled++
	}

	c.rmsSquares[c.rmsIndex] = square
	c.rmsSum += square

	c.rmsIndex++
	if c.rmsIndex >= len(c.rmsSquares) {
		c.rmsIndex = 0
	}

	mean := core.FlushDenormals(c.rmsSum * s.invRMSWindow)

	db := loudnessFloorDB
	if mean > 0 {
		rms := mathSqrt(mean)

		db = 20 * mathLog10(rms)
		if db < loudnessFloorDB {
			db = loudnessFloorDB
		}
	}

	// Target gain reduces only; unity below the ceiling.
	target := 1.0
	if db > s.thresholdDB {
		target = mathPower10((s.thresholdDB - db) / 20)
	}

	// Asymmetric one-pole smoothing: fast attack down, slow release up.
	if target < c.gain {
		c.gain += (target - c.gain) * s.attackCoeff
	} else {
		c.gain += (target - c.gain) * s.releaseCoeff
	}

	// Emit the delayed sample once the line has filled; until then the
	// channel passes the raw sample through directly (warm-up transient).
	out = x

	if m > 0 {
		if c.filled == m {
			out = delayed
		} else {
			c.filled++
		}

		c.writePos++
		if c.writePos >= m {
			c.writePos = 0
		}
	}

	return out, c.gain
}

// rmsLevel returns the detector's current linear RMS estimate.
func (c *channelState) rmsLevel() float64 {
	if len(c.rmsSquares) == 0 {
		return 0
	}

	mean := c.rmsSum / float64(len(c.rmsSquares))
	if mean <= 0 {
		return 0
	}

	return mathSqrt(mean)
}

// reset clears all state without changing buffer sizes.
func (c *channelState) reset() {
	core.Zero(c.delay)
	c.writePos = 0
	c.filled = 0

	core.Zero(c.rmsSquares)
	c.rmsIndex = 0
	c.rmsFilled = 0
	c.rmsSum = 0

	c.gain = 1.0
}

// adoptRMSRing swaps in a control-side allocated detector ring and
// reinitializes the channel. The delay line is not zeroed: filled drops to
// zero, so stale contents are overwritten before they can be read.
func (c *channelState) adoptRMSRing(ring []float64) {
	c.rmsSquares = ring
	c.rmsIndex = 0
	c.rmsFilled = 0
	c.rmsSum = 0

	c.writePos = 0
	c.filled = 0
	c.gain = 1.0
}
