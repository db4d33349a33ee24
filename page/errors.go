package page

import "errors"

var (
	// ErrCapacityBits indicates a WithCapacityBits value outside [1, 24].
	ErrCapacityBits = errors.New("page: capacity bits must be in [1, 24]")
)
