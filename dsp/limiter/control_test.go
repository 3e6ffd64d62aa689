package limiter

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-limiter/dsp/signal"
)

func ptr(v float64) *float64 { return &v }

func feedConstant(t *testing.T, e *Engine, value float64, samples, blockSize int) {
	t.Helper()

	in, err := signal.NewGenerator().Constant(value, blockSize)
	if err != nil {
		t.Fatal(err)
	}

	out := make([]float64, blockSize)

	for fed := 0; fed+blockSize <= samples; fed += blockSize {
		if err := e.ProcessBlock([][]float64{out}, [][]float64{in}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestUpdateAdoptedAtBlockBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 1
	cfg.ThresholdDB = 0 // nothing limited initially
	e := mustEngine(t, cfg)

	feedConstant(t, e, 0.5, 9600, 128)

	if g := e.ChannelGain(0); g != 1.0 {
		t.Fatalf("gain %g before update, want 1", g)
	}

	if err := e.Update(ParamUpdate{ThresholdDB: ptr(-40)}); err != nil {
		t.Fatal(err)
	}

	// Nothing adopted until the next block is processed.
	if g := e.ChannelGain(0); g != 1.0 {
		t.Fatalf("gain %g right after Update, want unchanged", g)
	}

	feedConstant(t, e, 0.5, 9600, 128)

	if g := e.ChannelGain(0); g >= 1.0 {
		t.Fatalf("gain %g after adopting -40 dB ceiling, want reduction", g)
	}
}

func TestUpdateRejectsInvalidParameters(t *testing.T) {
	e := mustEngine(t, DefaultConfig())

	tests := []struct {
		name string
		u    ParamUpdate
	}{
		{"zero attack", ParamUpdate{AttackSeconds: ptr(0)}},
		{"negative release", ParamUpdate{ReleaseSeconds: ptr(-1)}},
		{"zero rms window", ParamUpdate{RMSWindowSeconds: ptr(0)}},
	}

	before := e.Config()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Update(tt.u)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("Update() err=%v, want ErrInvalidParameter", err)
			}
		})
	}

	if e.Config() != before {
		t.Fatal("rejected updates changed the configuration")
	}
}

func TestUpdatePartialFieldsKeepOthers(t *testing.T) {
	e := mustEngine(t, DefaultConfig())

	if err := e.Update(ParamUpdate{ThresholdDB: ptr(-3)}); err != nil {
		t.Fatal(err)
	}

	got := e.Config()
	if got.ThresholdDB != -3 {
		t.Fatalf("ThresholdDB = %f, want -3", got.ThresholdDB)
	}

	if got.AttackSeconds != DefaultAttackSeconds || got.ReleaseSeconds != DefaultReleaseSeconds {
		t.Fatal("absent update fields changed values")
	}
}

func TestConfigureThresholdOnlyKeepsBuffers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 1
	e := mustEngine(t, cfg)

	m := e.LookaheadSamples()
	feedConstant(t, e, 0.25, 2*m, 128)

	if e.channels[0].filled != m {
		t.Fatalf("filled=%d before reconfigure, want %d", e.channels[0].filled, m)
	}

	delayBefore := append([]float64(nil), e.channels[0].delay...)

	cfg.ThresholdDB = -6
	if err := e.Configure(cfg); err != nil {
		t.Fatal(err)
	}

	if e.channels[0].filled != m {
		t.Fatalf("filled=%d after threshold-only reconfigure, want %d", e.channels[0].filled, m)
	}

	for i, v := range e.channels[0].delay {
		if v != delayBefore[i] {
			t.Fatalf("delay[%d] changed by threshold-only reconfigure", i)
		}
	}
}

func TestConfigureWindowChangeReinitializes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 2
	e := mustEngine(t, cfg)

	m := e.LookaheadSamples()
	feedConstant(t, e, 0.25, 2*m, 128)

	cfg.RMSWindowSeconds = 0.020
	if err := e.Configure(cfg); err != nil {
		t.Fatal(err)
	}

	for ch := range e.channels {
		if e.channels[ch].filled != 0 {
			t.Fatalf("channel %d: filled=%d after window change, want 0", ch, e.channels[ch].filled)
		}

		if len(e.channels[ch].rmsSquares) != cfg.rmsWindowSamples() {
			t.Fatalf("channel %d: detector ring %d samples, want %d",
				ch, len(e.channels[ch].rmsSquares), cfg.rmsWindowSamples())
		}
	}
}

func TestUpdateWindowChangeReinitializesAtBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 1
	e := mustEngine(t, cfg)

	m := e.LookaheadSamples()
	feedConstant(t, e, 0.25, 2*m, 128)

	if err := e.Update(ParamUpdate{RMSWindowSeconds: ptr(0.020)}); err != nil {
		t.Fatal(err)
	}

	// Still untouched: adoption happens at the next block boundary.
	if e.channels[0].filled != m {
		t.Fatalf("filled=%d right after Update, want %d", e.channels[0].filled, m)
	}

	feedConstant(t, e, 0.25, 128, 128)

	want := e.Config().rmsWindowSamples()
	if len(e.channels[0].rmsSquares) != want {
		t.Fatalf("detector ring %d samples after adoption, want %d",
			len(e.channels[0].rmsSquares), want)
	}

	// One 128-frame block has refilled part of the lookahead line.
	if e.channels[0].filled != 128 {
		t.Fatalf("filled=%d after adoption plus one block, want 128", e.channels[0].filled)
	}
}

func TestUpdateWindowChangeSurvivesSupersedingUpdate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 1
	e := mustEngine(t, cfg)

	m := e.LookaheadSamples()
	feedConstant(t, e, 0.25, 2*m, 128)

	// Two updates between blocks: the second supersedes the first, but the
	// window change from the first must still reach the processing side.
	if err := e.Update(ParamUpdate{RMSWindowSeconds: ptr(0.020)}); err != nil {
		t.Fatal(err)
	}

	if err := e.Update(ParamUpdate{ThresholdDB: ptr(-6)}); err != nil {
		t.Fatal(err)
	}

	feedConstant(t, e, 0.25, 128, 128)

	want := e.Config().rmsWindowSamples()
	if len(e.channels[0].rmsSquares) != want {
		t.Fatalf("detector ring %d samples after adoption, want %d",
			len(e.channels[0].rmsSquares), want)
	}

	if e.Config().ThresholdDB != -6 {
		t.Fatalf("ThresholdDB = %f, want -6", e.Config().ThresholdDB)
	}
}

func TestConfigureAfterAdoptedWindowUpdateRebuilds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 1
	e := mustEngine(t, cfg)

	// Shrink the detector window via Update and let a block adopt it.
	if err := e.Update(ParamUpdate{RMSWindowSeconds: ptr(0.010)}); err != nil {
		t.Fatal(err)
	}

	feedConstant(t, e, 0.25, 128, 128)

	if got := len(e.channels[0].rmsSquares); got != 480 {
		t.Fatalf("detector ring %d samples after adoption, want 480", got)
	}

	// Restoring the original window via Configure must rebuild the rings
	// even though the configuration matches the one Configure last saw.
	if err := e.Configure(cfg); err != nil {
		t.Fatal(err)
	}

	want := cfg.rmsWindowSamples()
	if got := len(e.channels[0].rmsSquares); got != want {
		t.Fatalf("detector ring %d samples after Configure, want %d", got, want)
	}

	if e.active.rmsWindowSamples != want {
		t.Fatalf("snapshot window %d disagrees with ring length %d",
			e.active.rmsWindowSamples, want)
	}

	// The detector divides by the snapshot window, so a disagreement would
	// skew every later loudness estimate.
	if e.active.invRMSWindow != 1.0/float64(want) {
		t.Fatalf("invRMSWindow %g, want %g", e.active.invRMSWindow, 1.0/float64(want))
	}
}

func TestConfigureInvalidKeepsPrevious(t *testing.T) {
	e := mustEngine(t, DefaultConfig())

	bad := DefaultConfig()
	bad.AttackSeconds = -1

	if err := e.Configure(bad); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Configure() err=%v, want ErrInvalidParameter", err)
	}

	if e.Config() != DefaultConfig() {
		t.Fatal("failed Configure changed the configuration")
	}
}
