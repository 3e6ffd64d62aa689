// Package modspectrum analyzes the modulation spectrum of a limiter gain
// trace. The FFT of the de-meaned gain signal exposes audible gain artifacts:
// periodic pumping appears as a low-frequency spectral peak, gain chatter as
// broadband high-frequency content.
package modspectrum
