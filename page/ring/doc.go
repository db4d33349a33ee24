// Package ring implements the lock-free free-page index ring at the heart of
// the page allocator.
//
// # Overview
//
// The ring is a fixed-capacity multi-producer multi-consumer FIFO of 32-bit
// page indices. Consumers (allocators) take the oldest free index; producers
// (freers) append indices at the tail. All cross-thread coordination happens
// through two kinds of atomic words:
//
//   - One packed 64-bit head/count word: bits 0..31 hold the ring index of
//     the oldest free slot, bits 32..63 hold the number of free indices.
//     A single CAS (consumer) or fetch-add (producer) on this word is the
//     linearization point of every operation.
//   - One 32-bit word per slot, holding either a free page index (high bit
//     clear) or an in-flight marker (high bit set).
//
// # Why FIFO
//
// A LIFO stack would maximize temporal reuse of page indices, which weakens
// the use-after-free trap the allocator exists to provide: stale pointers are
// more likely to land on a freshly reissued page. FIFO delays reuse by
// roughly one full trip around the ring.
//
// # Slot handshake
//
// After a consumer claims a slot via the head CAS, it stores the index back
// with the high bit set. That poison value is what lets a later consumer,
// arriving after the slot has been handed to a producer but before the
// producer has published its index, detect the race and wait: the high bit is
// only ever cleared by a producer's publish store. The wait is a bounded spin
// (the window is the handful of instructions between a producer's tail claim
// and its publish store) and is expected to be almost never taken.
//
// # Capacity
//
// Capacity must be a power of two so ring arithmetic reduces to masking, and
// at most 1<<24 so page indices stay clear of the reserved slot bits (24..30)
// and the in-flight bit (31). Because the ring's capacity equals the number
// of indices in circulation, the tail can never catch the head: the free
// count simply runs between 0 and capacity.
//
// # Thread safety
//
// All methods are safe to call from any goroutine. There are no locks,
// condition variables, or blocking waits anywhere in the package.
package ring
