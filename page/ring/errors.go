package ring

import "errors"

var (
	// ErrCapacity indicates a capacity that is zero, not a power of two, or
	// larger than MaxCapacity.
	ErrCapacity = errors.New("ring: capacity must be a power of two in [1, 1<<24]")

	// ErrBackingSize indicates a backing buffer too small for the capacity.
	ErrBackingSize = errors.New("ring: backing buffer smaller than capacity * 4 bytes")

	// ErrBackingAlign indicates a backing buffer that is not 4-byte aligned.
	ErrBackingAlign = errors.New("ring: backing buffer must be 4-byte aligned")
)
