package limiter

import "errors"

var (
	// ErrInvalidParameter reports a rejected configuration value. The
	// previous valid configuration stays in effect.
	ErrInvalidParameter = errors.New("limiter: invalid parameter")

	// ErrShapeMismatch reports a block whose channel count or per-channel
	// frame counts do not match the engine configuration.
	ErrShapeMismatch = errors.New("limiter: block shape mismatch")
)
