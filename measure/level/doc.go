// Package level measures signal levels: one-shot RMS, peak and crest factor
// over a buffer, and a streaming sliding-window meter with peak hold.
package level
