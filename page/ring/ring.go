package ring

import (
	"sync/atomic"
	"unsafe"
)

const (
	// inFlightFlag marks a slot whose contents are not a readable free-page
	// index: either a consumer poisoned the slot after taking its index, or a
	// producer has claimed the slot but not yet published into it. In both
	// cases the correct consumer action is the same: reload until the flag
	// clears. Only a producer's publish store clears it.
	inFlightFlag = uint32(1) << 31

	// MaxCapacity bounds the ring so page indices occupy only the low 24 bits
	// of a slot. Bits 24..30 are reserved (e.g. for a future generation
	// counter); bit 31 is inFlightFlag.
	MaxCapacity = 1 << 24

	countOne = uint64(1) << 32 // one free index, in head/count packing
	countHi  = uint64(0xFFFFFFFF) << 32
)

// Ring is a lock-free MPMC FIFO of page indices. See the package
// documentation for the protocol. The zero value is not usable; construct
// with New.
type Ring struct {
	// hc packs the head ring index (bits 0..31) and the free count
	// (bits 32..63). Every operation linearizes at its RMW on this word.
	hc atomic.Uint64
	_  [56]byte // keep the RMW word off the metadata cache line

	mask  uint64
	size  uint32
	slots []atomic.Uint32

	// Contention counters. Cold: they only tick on the paths that are
	// expected to be nearly never taken.
	casRetries atomic.Uint64
	slotSpins  atomic.Uint64

	// beforePublish, when non-nil, runs between a producer's tail claim and
	// its publish store. Test instrumentation only; nil in production.
	beforePublish func()
}

// New creates a ring holding every index in [0, capacity), each free exactly
// once, with the head at index 0.
//
// capacity must be a power of two, at most MaxCapacity. If backing is non-nil
// the slot array lives in backing (which must hold capacity*4 bytes and be
// 4-byte aligned; any mmap'd region qualifies), otherwise the slots are
// heap-allocated. Initialization happens single-threaded; the ring is safe
// for concurrent use as soon as New returns.
func New(capacity uint32, backing []byte) (*Ring, error) {
	if capacity == 0 || capacity > MaxCapacity || capacity&(capacity-1) != 0 {
		return nil, ErrCapacity
	}

	var slots []atomic.Uint32
	if backing != nil {
		if len(backing) < int(capacity)*4 {
			return nil, ErrBackingSize
		}
		p := unsafe.Pointer(unsafe.SliceData(backing))
		if uintptr(p)%unsafe.Alignof(atomic.Uint32{}) != 0 {
			return nil, ErrBackingAlign
		}
		slots = unsafe.Slice((*atomic.Uint32)(p), capacity)
	} else {
		slots = make([]atomic.Uint32, capacity)
	}

	r := &Ring{
		mask:  uint64(capacity - 1),
		size:  capacity,
		slots: slots,
	}
	for i := uint32(0); i < capacity; i++ {
		r.slots[i].Store(i)
	}
	r.hc.Store(uint64(capacity) << 32)
	return r, nil
}

// Pop takes the oldest free page index. It reports false when the free count
// is zero; the caller owns the empty-ring policy. On success the returned
// index is owned exclusively by the caller until it is handed back via Push.
func (r *Ring) Pop() (uint32, bool) {
	var hc uint64
	for {
		hc = r.hc.Load()
		if hc>>32 == 0 {
			return 0, false
		}
		// The successful CAS transfers ownership of slot hc&mask to us.
		if r.hc.CompareAndSwap(hc, claimOne(hc, r.mask)) {
			break
		}
		r.casRetries.Add(1)
	}

	slot := &r.slots[hc&r.mask]
	v := slot.Load()
	for v&inFlightFlag != 0 {
		// A producer owns this slot's contents: it has claimed the tail but
		// not yet stored its index. Wait for the publish store.
		r.slotSpins.Add(1)
		v = slot.Load()
	}

	// Poison the slot so that the next consumer to wrap onto it, after a
	// future producer claims it, waits for that producer's publish instead of
	// reading this stale index.
	slot.Store(v | inFlightFlag)
	return v, true
}

// Push appends a free page index at the tail. idx must be an index previously
// obtained from Pop (or one of the initial indices of a draining ring being
// repopulated) and must be below the ring's capacity; the flag bit must be
// clear. Push cannot fail: the ring's capacity equals the number of indices
// in circulation, so there is always a slot for a returning index.
func (r *Ring) Push(idx uint32) {
	// The fetch-add simultaneously advertises one more free index to
	// consumers and reserves a unique tail slot against other producers.
	old := r.hc.Add(countOne) - countOne
	tail := (old>>32 + old) & r.mask

	if r.beforePublish != nil {
		r.beforePublish()
	}

	// Publish. This store clears the in-flight flag a prior consumer left in
	// the slot, releasing any consumer spinning in Pop.
	r.slots[tail].Store(idx)
}

// Free returns the number of indices currently in the ring. The value is an
// instantaneous snapshot; under concurrent use it is stale by the time it is
// observed.
func (r *Ring) Free() uint32 {
	return uint32(r.hc.Load() >> 32)
}

// Capacity returns the fixed capacity the ring was built with.
func (r *Ring) Capacity() uint32 {
	return r.size
}

// Contention returns the cumulative consumer CAS retries and in-flight slot
// spins. Both should stay near zero on healthy workloads.
func (r *Ring) Contention() (casRetries, slotSpins uint64) {
	return r.casRetries.Load(), r.slotSpins.Load()
}

// claimOne advances the head by one slot (mod capacity) and decrements the
// free count, all within the packed head/count word. The low half is masked
// after the increment; the high half's borrow cannot occur because callers
// verify the count is nonzero before attempting the CAS.
func claimOne(hc, mask uint64) uint64 {
	return (hc-countOne)&countHi | (hc+1)&mask
}
