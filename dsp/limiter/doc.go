// Package limiter provides a real-time, per-sample loudness limiter with
// lookahead.
//
// The engine bounds the sliding-window RMS loudness of a streaming signal to
// a configurable dB ceiling without ever boosting quiet input. Loudness is
// analyzed on the current sample while the program signal runs through a
// fixed delay line, so gain reduction computed from "future" audio is already
// in full effect by the time a loud sample reaches the output. An asymmetric
// one-pole filter (fast attack, slow release) smooths the gain to avoid
// sample-to-sample chatter.
//
// Processing is block-based with planar buffers and a fixed channel count.
// The hot path is non-blocking, lock-free and allocation-free in steady
// state; parameter changes cross over from a control context through a
// versioned snapshot that is adopted at block boundaries, never mid-block.
package limiter
