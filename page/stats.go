package page

// Stats is a snapshot of the allocator's operation counters. The counters
// exist for tests and the pagectl tooling; they are not a telemetry surface.
type Stats struct {
	AllocCalls uint64 // completed Allocate calls
	FreeCalls  uint64 // completed Free calls
	CASRetries uint64 // consumer head-claim retries in the slot ring
	SlotSpins  uint64 // waits on a mid-publish ring slot
}

// Stats returns a snapshot of the counters. Under concurrent use the fields
// are individually accurate but not mutually consistent.
func (a *Allocator) Stats() Stats {
	retries, spins := a.ring.Contention()
	return Stats{
		AllocCalls: a.allocCalls.Load(),
		FreeCalls:  a.freeCalls.Load(),
		CASRetries: retries,
		SlotSpins:  spins,
	}
}
