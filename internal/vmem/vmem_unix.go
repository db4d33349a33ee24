//go:build linux || darwin

package vmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ReserveWindow obtains n bytes of contiguous virtual address space with no
// access permissions and no physical commitment. Touching any byte of the
// returned region faults until SetAccessible grants access to it.
func ReserveWindow(n int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, n, unix.PROT_NONE,
		unix.MAP_PRIVATE|unix.MAP_ANON|unix.MAP_NORESERVE)
	if err != nil {
		return nil, fmt.Errorf("vmem: reserve window (%d bytes): %w", n, err)
	}
	return b, nil
}

// ReserveRW obtains n bytes of readable, writable, zero-filled memory.
// Physical pages are committed lazily by the kernel on first touch.
func ReserveRW(n int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("vmem: reserve rw (%d bytes): %w", n, err)
	}
	return b, nil
}

// SetAccessible flips the protection of exactly len(b) bytes: read+write when
// accessible is true, no access otherwise. b must be page-aligned and a whole
// number of pages. After a transition to inaccessible the kernel may discard
// the backing physical pages; callers must not rely on content surviving an
// inaccessible interval.
func SetAccessible(b []byte, accessible bool) error {
	prot := unix.PROT_NONE
	if accessible {
		prot = unix.PROT_READ | unix.PROT_WRITE
	}
	if err := unix.Mprotect(b, prot); err != nil {
		return fmt.Errorf("vmem: mprotect (%d bytes): %w", len(b), err)
	}
	return nil
}

// Discard tells the kernel it may drop the physical pages backing b. The
// mapping itself stays reserved; the next access (after SetAccessible) sees
// zero-filled pages.
func Discard(b []byte) error {
	if err := unix.Madvise(b, unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("vmem: madvise (%d bytes): %w", len(b), err)
	}
	return nil
}

// Release returns a mapping obtained from ReserveWindow or ReserveRW to the
// OS. A second Release of the same region is treated as a no-op.
func Release(b []byte) error {
	if b == nil {
		return nil
	}
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		// Double-unmap. Harmless for callers.
		return nil
	}
	return err
}
