// Package vmem wraps the handful of kernel virtual-memory operations the
// allocator needs: reserving address space without physical backing, flipping
// per-page protection, and returning mappings to the OS.
//
// This package is the only code in the module that talks to the kernel.
// Everything above it works on plain byte slices.
package vmem

import "errors"

// ErrUnsupported is returned on platforms without anonymous mappings and
// per-page protection changes. There is no degraded in-memory fallback:
// without the protection trap the allocator has no reason to exist.
var ErrUnsupported = errors.New("vmem: page protection is not supported on this platform")
