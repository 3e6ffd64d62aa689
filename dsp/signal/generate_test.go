package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-limiter/dsp/core"
)

func TestSine(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(48000))

	out, err := g.Sine(1000, 0.5, 4800)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 4800 {
		t.Fatalf("len = %d, want 4800", len(out))
	}

	if out[0] != 0 {
		t.Fatalf("sine must start at zero phase, got %f", out[0])
	}

	// Peak at a quarter period: 48 samples per cycle.
	if math.Abs(out[12]-0.5) > 1e-12 {
		t.Fatalf("quarter-period sample %f, want 0.5", out[12])
	}

	if _, err := g.Sine(1000, 0.5, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}
}

func TestConstant(t *testing.T) {
	g := NewGenerator()

	out, err := g.Constant(0.25, 100)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range out {
		if v != 0.25 {
			t.Fatalf("sample %d = %f, want 0.25", i, v)
		}
	}
}

func TestLevelStep(t *testing.T) {
	g := NewGenerator()

	out, err := g.LevelStep(0.5, 0.01, 10, 20)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		if out[i] != 0.5 {
			t.Fatalf("sample %d = %f before switch, want 0.5", i, out[i])
		}
	}

	for i := 10; i < 20; i++ {
		if out[i] != 0.01 {
			t.Fatalf("sample %d = %f after switch, want 0.01", i, out[i])
		}
	}

	if _, err := g.LevelStep(0.5, 0.01, 30, 20); err == nil {
		t.Fatal("expected error for switch beyond signal")
	}
}

func TestToneBurst(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(48000))

	out, err := g.ToneBurst(440, 0.9, 100, 200, 400)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d = %f before burst, want silence", i, out[i])
		}
	}

	for i := 300; i < 400; i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d = %f after burst, want silence", i, out[i])
		}
	}

	burstPeak := 0.0
	for _, v := range out[100:300] {
		if a := math.Abs(v); a > burstPeak {
			burstPeak = a
		}
	}

	if burstPeak < 0.5 {
		t.Fatalf("burst peak %f, want audible burst", burstPeak)
	}

	if _, err := g.ToneBurst(440, 0.9, 300, 200, 400); err == nil {
		t.Fatal("expected error for burst beyond signal")
	}
}

func TestWhiteNoiseDeterminism(t *testing.T) {
	coreOpts := []core.ProcessorOption{core.WithSampleRate(48000)}

	g1 := NewGeneratorWithOptions(coreOpts, WithSeed(42))
	g2 := NewGeneratorWithOptions(coreOpts, WithSeed(42))

	n1, err := g1.WhiteNoise(0.8, 1000)
	if err != nil {
		t.Fatal(err)
	}

	n2, err := g2.WhiteNoise(0.8, 1000)
	if err != nil {
		t.Fatal(err)
	}

	for i := range n1 {
		if n1[i] != n2[i] {
			t.Fatalf("sample %d differs for identical seeds", i)
		}

		if math.Abs(n1[i]) > 0.8 {
			t.Fatalf("sample %d = %f exceeds amplitude", i, n1[i])
		}
	}

	if _, err := g1.WhiteNoise(-0.1, 10); err == nil {
		t.Fatal("expected error for negative amplitude")
	}
}
