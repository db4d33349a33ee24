package page

const (
	// DefaultCapacityBits sizes the window at 2^24 pages: 64 GiB of virtual
	// address space at 4 KiB pages. The window is reserved, not committed;
	// physical memory is only consumed by live pages and the 64 MiB slot
	// ring.
	DefaultCapacityBits = 24

	// maxCapacityBits keeps page indices within the low 24 bits of a ring
	// slot. Bits 24..30 are reserved; bit 31 is the in-flight marker.
	maxCapacityBits = 24
)

type config struct {
	capacityBits  int
	discardOnFree bool
}

// Option configures an Allocator at construction.
type Option func(*config)

// WithCapacityBits sets log2 of the page count. The default is
// DefaultCapacityBits; small values are useful in tests. Must be in [1, 24].
func WithCapacityBits(bits int) Option {
	return func(c *config) { c.capacityBits = bits }
}

// WithDiscardOnFree additionally tells the kernel to drop the physical pages
// backing a freed page (madvise MADV_DONTNEED). The trap does not depend on
// this (a freed page is inaccessible either way), but it returns RSS to the
// OS at the cost of one extra syscall per Free; on Linux a recycled page is
// then always zero-filled.
func WithDiscardOnFree(discard bool) Option {
	return func(c *config) { c.discardOnFree = discard }
}
