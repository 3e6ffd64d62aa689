package modspectrum

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultFFTSize = 4096

	// floorDB bounds reported magnitudes; modulation components below this
	// are treated as absent.
	floorDB = -160.0
)

// Config holds modulation-spectrum analysis parameters.
type Config struct {
	SampleRate float64
	FFTSize    int
}

// Result holds the analyzed modulation spectrum of a gain trace.
type Result struct {
	BinHz        float64   // frequency resolution per bin
	MagnitudesDB []float64 // bins 0..FFTSize/2, dB relative to full modulation
	PeakFreqHz   float64   // dominant modulation frequency (DC excluded)
	PeakDB       float64   // level of the dominant component
}

// Analyze computes the modulation spectrum of a gain trace: the DC component
// (the static gain) is removed, the residue is Hann-windowed and transformed,
// and the magnitude spectrum of the gain movement is returned. Periodic gain
// "pumping" shows up as a distinct spectral peak at the pump rate, while
// per-sample chatter spreads energy across high modulation frequencies.
//
// When the trace is longer than the FFT size the most recent samples are
// analyzed; shorter traces are zero-padded.
func Analyze(trace []float64, cfg Config) (Result, error) {
	if len(trace) == 0 {
		return Result{}, fmt.Errorf("modulation spectrum: empty gain trace")
	}

	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return Result{}, fmt.Errorf("modulation spectrum: sample rate must be positive and finite: %f", cfg.SampleRate)
	}

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = defaultFFTSize
	}

	if fftSize&(fftSize-1) != 0 {
		return Result{}, fmt.Errorf("modulation spectrum: fft size must be a power of two: %d", fftSize)
	}

	segment := trace
	if len(segment) > fftSize {
		segment = segment[len(segment)-fftSize:]
	}

	// Remove the static gain so the spectrum reflects gain movement only.
	mean := 0.0
	for _, g := range segment {
		mean += g
	}
	mean /= float64(len(segment))

	in := make([]complex128, fftSize)
	windowSum := 0.0

	for i, g := range segment {
		w := hann(i, fftSize)
		windowSum += w
		in[i] = complex((g-mean)*w, 0)
	}

	if windowSum <= 0 {
		windowSum = 1
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("modulation spectrum: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("modulation spectrum: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mags := make([]float64, bins)
	vecmath.Magnitude(mags, re, im)

	// Scale to modulation amplitude: single-sided, window-gain corrected.
	scale := 2.0 / windowSum

	res := Result{
		BinHz:        cfg.SampleRate / float64(fftSize),
		MagnitudesDB: make([]float64, bins),
		PeakDB:       floorDB,
	}

	for i, mag := range mags {
		db := floorDB
		if amp := mag * scale; amp > 0 {
			db = 20 * math.Log10(amp)
			if db < floorDB {
				db = floorDB
			}
		}

		res.MagnitudesDB[i] = db

		if i > 0 && db > res.PeakDB {
			res.PeakDB = db
			res.PeakFreqHz = float64(i) * res.BinHz
		}
	}

	return res, nil
}

// hann returns the periodic Hann window coefficient for index i of size n.
func hann(i, n int) float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
}
