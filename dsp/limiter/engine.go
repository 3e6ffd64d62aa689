package limiter

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-limiter/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Engine is a multi-channel lookahead limiter.
//
// One goroutine (the real-time callback) calls ProcessBlock; any number of
// control goroutines may call Update and the metering accessors. Configure
// and Reset are control-path operations that must be serialized with
// ProcessBlock by the caller, for example by quiescing the stream first.
type Engine struct {
	ctrlMu          sync.Mutex
	cfg             Config // active structural configuration
	target          Config // latest accepted configuration (control side)
	version         uint64
	publishedWindow int
	pendingRings    [][]float64 // last replacement rings shipped, until adopted

	active  *snapshot
	pending atomic.Pointer[snapshot]

	channels []channelState

	// Scratch for the chunked output path; sized to MaxBlockSize, larger
	// blocks are processed in segments.
	scratchDelayed []float64
	scratchGain    []float64

	meters []channelMeter
	blocks atomic.Uint64
}

// New creates an engine from cfg. All buffers are allocated up front; the
// processing path never allocates afterwards.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{}
	e.rebuild(cfg)

	e.version = 1
	snap := buildSnapshot(cfg, e.version)

	e.cfg = cfg
	e.target = cfg
	e.publishedWindow = snap.rmsWindowSamples
	e.active = snap
	e.pending.Store(snap)

	return e, nil
}

// Channels returns the fixed channel count.
func (e *Engine) Channels() int { return len(e.channels) }

// LookaheadSamples returns the delay line length M; output lags input by
// exactly M samples once steady state is reached.
func (e *Engine) LookaheadSamples() int {
	if len(e.channels) == 0 {
		return 0
	}

	return len(e.channels[0].delay)
}

// ProcessBlock transforms src into dst, block shapes must be identical.
// Buffers are planar: one []float64 per channel, all with the same frame
// count. A nil or empty block is a no-op.
//
// The call adopts any pending parameter update before touching samples, then
// runs the per-sample chain per channel. It never blocks, never allocates
// and returns an error only for malformed shapes, detected before any
// channel state is modified.
func (e *Engine) ProcessBlock(dst, src [][]float64) error {
	if len(src) == 0 {
		return nil
	}

	if len(src) > len(e.channels) {
		return fmt.Errorf("%w: %d channels exceeds configured %d",
			ErrShapeMismatch, len(src), len(e.channels))
	}

	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst has %d channels, src has %d",
			ErrShapeMismatch, len(dst), len(src))
	}

	frames := len(src[0])
	for ch := range src {
		if len(src[ch]) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d",
				ErrShapeMismatch, ch, len(src[ch]), frames)
		}

		if len(dst[ch]) != frames {
			return fmt.Errorf("%w: dst channel %d has %d frames, want %d",
				ErrShapeMismatch, ch, len(dst[ch]), frames)
		}
	}

	if frames == 0 {
		return nil
	}

	e.adoptPending()
	snap := e.active

	for ch := range src {
		e.processChannel(&e.channels[ch], &e.meters[ch], dst[ch], src[ch], snap)
	}

	e.blocks.Add(1)

	return nil
}

// ProcessInPlace limits buf in place.
func (e *Engine) ProcessInPlace(buf [][]float64) error {
	return e.ProcessBlock(buf, buf)
}

// processChannel runs the per-sample chain over one channel, in segments of
// at most MaxBlockSize frames so the scratch buffers bound memory use. Each
// segment collects the pre-gain samples and their gains, then applies the
// gain with a single vector multiply.
func (e *Engine) processChannel(st *channelState, meter *channelMeter, dst, src []float64, snap *snapshot) {
	// dst may alias src (in-place processing), so take the input peak
	// before any sample is overwritten.
	inPeak := vecmath.MaxAbs(src)

	chunk := len(e.scratchGain)

	for start := 0; start < len(src); start += chunk {
		end := min(start+chunk, len(src))
		n := end - start

		delayed := e.scratchDelayed[:n]
		gains := e.scratchGain[:n]

		for i, x := range src[start:end] {
			delayed[i], gains[i] = st.step(x, snap)
		}

		vecmath.MulBlock(dst[start:end], delayed, gains)
	}

	meter.store(
		st.gain,
		core.LinearToDBFloor(st.rmsLevel(), loudnessFloorDB),
		inPeak,
		vecmath.MaxAbs(dst),
	)
}

// Reset clears all channel state (buffers zeroed, gain back to unity, fill
// counters to zero) without changing the configuration. Like Configure it
// must not run concurrently with ProcessBlock.
func (e *Engine) Reset() {
	for i := range e.channels {
		e.channels[i].reset()
	}

	for i := range e.meters {
		e.meters[i].reset()
	}
}
