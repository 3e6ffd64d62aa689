package level

import (
	"math"

	"github.com/cwbudde/algo-limiter/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// FloorDB is the lowest level reported by the dB helpers; silence maps here
// instead of -Inf.
const FloorDB = -100.0

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	sumSq := vecmath.DotProduct(signal, signal)
	if sumSq <= 0 {
		return 0
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// RMSDB returns the RMS level in dBFS, clamped to FloorDB.
func RMSDB(signal []float64) float64 {
	return core.LinearToDBFloor(RMS(signal), FloorDB)
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.MaxAbs(signal)
}

// PeakDB returns the peak level in dBFS, clamped to FloorDB.
func PeakDB(signal []float64) float64 {
	return core.LinearToDBFloor(Peak(signal), FloorDB)
}

// CrestFactor returns peak / RMS, or 0 for a silent signal.
func CrestFactor(signal []float64) float64 {
	r := RMS(signal)
	if r == 0 {
		return 0
	}

	return Peak(signal) / r
}
