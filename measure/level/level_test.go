package level

import (
	"math"
	"testing"
)

func sine(freqHz, amplitude, sampleRate float64, samples int) []float64 {
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

func TestRMSOfSine(t *testing.T) {
	// Whole number of periods: RMS is exactly amplitude / sqrt(2).
	s := sine(1000, 0.5, 48000, 4800)

	want := 0.5 / math.Sqrt2
	if got := RMS(s); math.Abs(got-want) > 1e-9 {
		t.Fatalf("RMS = %g, want %g", got, want)
	}

	if got := RMSDB(s); math.Abs(got-(-9.03)) > 0.01 {
		t.Fatalf("RMSDB = %g, want about -9.03", got)
	}
}

func TestPeakAndCrest(t *testing.T) {
	s := sine(1000, 0.5, 48000, 4800)

	if got := Peak(s); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Peak = %g, want 0.5", got)
	}

	if got := CrestFactor(s); math.Abs(got-math.Sqrt2) > 1e-9 {
		t.Fatalf("CrestFactor = %g, want sqrt(2)", got)
	}
}

func TestSilence(t *testing.T) {
	silence := make([]float64, 1000)

	if RMS(silence) != 0 || Peak(silence) != 0 || CrestFactor(silence) != 0 {
		t.Fatal("silence must measure as zero")
	}

	if RMSDB(silence) != FloorDB || PeakDB(silence) != FloorDB {
		t.Fatal("silence must clamp to the floor in dB")
	}
}

func TestEmpty(t *testing.T) {
	if RMS(nil) != 0 || Peak(nil) != 0 {
		t.Fatal("empty input must measure as zero")
	}
}
