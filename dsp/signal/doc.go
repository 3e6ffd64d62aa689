// Package signal generates deterministic test and demo signals: sine waves,
// constant levels, level steps, tone bursts and seeded white noise.
package signal
