package limiter

import (
	"math"
	"sync/atomic"
)

// channelMeter publishes per-channel levels as atomic float64 bits so a UI
// or logger can poll them without touching the processing path.
type channelMeter struct {
	gain    atomic.Uint64
	rmsDB   atomic.Uint64
	inPeak  atomic.Uint64
	outPeak atomic.Uint64
}

func (m *channelMeter) store(gain, rmsDB, inPeak, outPeak float64) {
	m.gain.Store(math.Float64bits(gain))
	m.rmsDB.Store(math.Float64bits(rmsDB))
	m.inPeak.Store(math.Float64bits(inPeak))
	m.outPeak.Store(math.Float64bits(outPeak))
}

func (m *channelMeter) reset() {
	m.store(1.0, loudnessFloorDB, 0, 0)
}

// ChannelMetrics is a read-only level snapshot for one channel.
type ChannelMetrics struct {
	Gain       float64 // smoothed linear gain after the last block, (0, 1]
	RMSDB      float64 // detector loudness estimate in dBFS
	InputPeak  float64 // peak |sample| of the last input block
	OutputPeak float64 // peak |sample| of the last output block
}

// Metrics aggregates engine-wide metering.
type Metrics struct {
	Blocks   uint64
	Channels []ChannelMetrics
}

// Metrics returns current metering values. Reading never mutates engine
// state and is safe concurrently with ProcessBlock.
func (e *Engine) Metrics() Metrics {
	out := Metrics{
		Blocks:   e.blocks.Load(),
		Channels: make([]ChannelMetrics, len(e.meters)),
	}

	for i := range e.meters {
		m := &e.meters[i]
		out.Channels[i] = ChannelMetrics{
			Gain:       math.Float64frombits(m.gain.Load()),
			RMSDB:      math.Float64frombits(m.rmsDB.Load()),
			InputPeak:  math.Float64frombits(m.inPeak.Load()),
			OutputPeak: math.Float64frombits(m.outPeak.Load()),
		}
	}

	return out
}

// ChannelGain returns the smoothed gain of one channel after the most
// recently processed block, or 0 for an invalid index.
func (e *Engine) ChannelGain(ch int) float64 {
	if ch < 0 || ch >= len(e.meters) {
		return 0
	}

	return math.Float64frombits(e.meters[ch].gain.Load())
}

// ChannelRMSDB returns the detector loudness estimate of one channel in
// dBFS, or the loudness floor for an invalid index.
func (e *Engine) ChannelRMSDB(ch int) float64 {
	if ch < 0 || ch >= len(e.meters) {
		return loudnessFloorDB
	}

	return math.Float64frombits(e.meters[ch].rmsDB.Load())
}

// Blocks returns the number of fully processed blocks, for external
// underrun accounting.
func (e *Engine) Blocks() uint64 {
	return e.blocks.Load()
}
