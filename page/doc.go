// Package page implements a lock-free virtual page allocator that turns
// use-after-free bugs into immediate, deterministic crashes.
//
// # Overview
//
// The allocator reserves a large contiguous window of virtual address space
// up front (2^24 pages by default, 64 GiB at 4 KiB pages) with no physical
// backing and no access permissions. Allocate hands out one fresh page at a
// time, made readable and writable the moment it is issued. Free makes the
// page inaccessible again before recycling its slot, so any dangling pointer
// into a freed page faults on its next dereference instead of silently
// corrupting whoever owns the memory next.
//
// Free pages are tracked in a lock-free FIFO ring (see page/ring); FIFO order
// delays address reuse by roughly one full trip around the window, keeping
// the trap armed for as long as possible.
//
// # Usage
//
//	a, err := page.New()
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	p := a.Allocate() // one page, readable and writable
//	copy(p, payload)
//	a.Free(p)         // p now traps on any access
//
// # Failure policy
//
// Allocate and Free never return errors. The two conditions they can hit,
// window exhaustion and a failed kernel protection change, terminate the
// process: this component sits underneath a heap, and handing the heap a nil
// page under pressure would only smear the failure across the program.
// Construction, by contrast, returns ordinary errors; whether a missing
// allocator is fatal is the caller's call.
//
// # Thread safety
//
// All methods on Allocator are safe to call from any goroutine. The package
// contains no locks; coordination is a single atomic word plus one atomic
// slot per page (see page/ring).
//
// # Diagnostics
//
// Set PAGEKIT_LOG for construction/teardown diagnostics on stderr. Set
// PAGEKIT_PARANOID to validate Free arguments (containment and alignment)
// instead of trusting the caller.
package page
