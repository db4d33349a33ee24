package page

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/pagekit/internal/vmem"
	"github.com/joshuapare/pagekit/page/ring"
)

// Allocator hands out unique, page-aligned virtual pages and retires each
// page's address the moment it is freed. See the package documentation for
// the model; construct with New.
type Allocator struct {
	// window is the full reserved address range: pages * pageSize bytes,
	// inaccessible except where a live allocation holds a page.
	window []byte

	// ringMem backs the free-slot ring: pages * 4 bytes, read-write.
	ringMem []byte

	ring     *ring.Ring
	pageSize int
	pages    uint32
	discard  bool

	allocCalls atomic.Uint64
	freeCalls  atomic.Uint64
}

// New reserves the page window and the free-slot ring and returns a ready
// allocator. The window starts fully inaccessible with every page free.
//
// Construction is the only fallible surface of the package: it fails if the
// platform lacks page protection (vmem.ErrUnsupported) or if either
// reservation is refused by the kernel.
func New(opts ...Option) (*Allocator, error) {
	cfg := config{capacityBits: DefaultCapacityBits}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capacityBits < 1 || cfg.capacityBits > maxCapacityBits {
		return nil, ErrCapacityBits
	}

	pageSize := os.Getpagesize()
	pages := uint32(1) << cfg.capacityBits

	window, err := vmem.ReserveWindow(int(pages) * pageSize)
	if err != nil {
		return nil, fmt.Errorf("page: reserve window: %w", err)
	}

	ringMem, err := vmem.ReserveRW(int(pages) * 4)
	if err != nil {
		_ = vmem.Release(window)
		return nil, fmt.Errorf("page: reserve slot ring: %w", err)
	}

	r, err := ring.New(pages, ringMem)
	if err != nil {
		_ = vmem.Release(ringMem)
		_ = vmem.Release(window)
		return nil, fmt.Errorf("page: build slot ring: %w", err)
	}

	a := &Allocator{
		window:   window,
		ringMem:  ringMem,
		ring:     r,
		pageSize: pageSize,
		pages:    pages,
		discard:  cfg.discardOnFree,
	}

	logf("window: %d pages x %d bytes (%d MiB reserved), ring: %d KiB",
		pages, pageSize, int64(pages)*int64(pageSize)>>20, pages*4>>10)

	return a, nil
}

// Allocate returns one fresh page: page-aligned, readable, writable, exactly
// PageSize bytes. Contents are unspecified. Allocate never returns an error;
// if every page in the window is live, the process terminates (see the
// package documentation's failure policy).
func (a *Allocator) Allocate() []byte {
	idx, ok := a.ring.Pop()
	if !ok {
		fatalf("out of pages: all %d pages in the window are live", a.pages)
	}

	p := a.page(idx)
	if err := vmem.SetAccessible(p, true); err != nil {
		fatalf("arming page %d: %v", idx, err)
	}

	a.allocCalls.Add(1)
	return p
}

// Free retires p's address and recycles its page. p must be a slice returned
// by Allocate on this allocator and not yet freed; by the time Free returns,
// any access through a stale reference to p faults.
//
// The page is made inaccessible before its slot reappears in the ring, so no
// concurrent Allocate can re-arm the address while a stale pointer could
// still use it quietly.
func (a *Allocator) Free(p []byte) {
	idx := a.pageIndex(p)

	pg := a.page(idx)
	if err := vmem.SetAccessible(pg, false); err != nil {
		fatalf("disarming page %d: %v", idx, err)
	}
	if a.discard {
		if err := vmem.Discard(pg); err != nil {
			fatalf("discarding page %d: %v", idx, err)
		}
	}

	a.freeCalls.Add(1)
	a.ring.Push(idx)
}

// Close releases the window and the ring back to the OS. Every outstanding
// page becomes invalid; callers are expected to have drained. Close is not
// safe to call concurrently with Allocate or Free.
func (a *Allocator) Close() error {
	var err error
	a.ring = nil
	if a.ringMem != nil {
		err = vmem.Release(a.ringMem)
		a.ringMem = nil
	}
	if a.window != nil {
		if e := vmem.Release(a.window); e != nil && err == nil {
			err = e
		}
		a.window = nil
	}
	logf("closed")
	return err
}

// FreeCount returns the number of pages currently free. Instantaneous
// snapshot; under concurrency it is stale on arrival.
func (a *Allocator) FreeCount() uint32 {
	return a.ring.Free()
}

// PageSize returns the page size in bytes (always the OS page size).
func (a *Allocator) PageSize() int {
	return a.pageSize
}

// Pages returns the fixed number of pages in the window.
func (a *Allocator) Pages() uint32 {
	return a.pages
}

// page returns the full slice of page idx within the window.
func (a *Allocator) page(idx uint32) []byte {
	off := int(idx) * a.pageSize
	return a.window[off : off+a.pageSize : off+a.pageSize]
}

// pageIndex maps a page slice back to its window index. With
// PAGEKIT_PARANOID set, containment and alignment violations crash with a
// diagnostic instead of corrupting the ring.
func (a *Allocator) pageIndex(p []byte) uint32 {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.window)))
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	off := addr - base

	if paranoid {
		switch {
		case p == nil:
			fatalf("Free(nil)")
		case addr < base, off >= uintptr(len(a.window)):
			fatalf("Free of address %#x outside the page window", addr)
		case off%uintptr(a.pageSize) != 0:
			fatalf("Free of misaligned address %#x", addr)
		}
	}

	return uint32(off / uintptr(a.pageSize))
}
