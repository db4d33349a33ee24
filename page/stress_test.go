package page

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joshuapare/pagekit/page/sizeclass"
)

// Test_Allocator_ConcurrentSmoke runs the classic heap smoke workload: a few
// goroutines each repeatedly allocate a large batch of pages for randomized
// power-of-two request sizes, then free the whole batch. After joining, the
// free count must be back at the full window; any drift means an index was
// lost or duplicated.
func Test_Allocator_ConcurrentSmoke(t *testing.T) {
	const capacityBits = 18 // 262144 pages; 3 workers * 65536 held at peak
	const workers = 3
	const batch = 65536

	duration := time.Second
	if testing.Short() {
		duration = 150 * time.Millisecond
	}

	a := mustNew(t, WithCapacityBits(capacityBits))
	pageSize := a.PageSize()

	live := make([]atomic.Uint32, a.Pages())
	var dupes atomic.Uint64
	var stop atomic.Bool

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			held := make([][]byte, 0, batch)

			for !stop.Load() {
				for i := 0; i < batch; i++ {
					// The surrounding heap would round the request and only
					// route single-page fits here.
					request := 1 << (1 + rng.Intn(12))
					if !sizeclass.FitsPage(request, pageSize) {
						continue
					}
					p := a.Allocate()
					if !live[a.pageIndex(p)].CompareAndSwap(0, 1) {
						dupes.Add(1)
					}
					held = append(held, p)
				}
				for _, p := range held {
					live[a.pageIndex(p)].Store(0)
					a.Free(p)
				}
				held = held[:0]
			}
		}(int64(w) + 1)
	}

	time.Sleep(duration)
	stop.Store(true)
	wg.Wait()

	if n := dupes.Load(); n != 0 {
		t.Fatalf("%d pages were live twice", n)
	}
	if got := a.FreeCount(); got != a.Pages() {
		t.Fatalf("free count drifted: got %d, want %d", got, a.Pages())
	}

	s := a.Stats()
	t.Logf("%d allocs, %d frees, %d cas retries, %d slot spins",
		s.AllocCalls, s.FreeCalls, s.CASRetries, s.SlotSpins)
}

// Test_Allocator_InterleavedProducerConsumer pins two goroutines in
// free-then-allocate and allocate-then-free loops so a producer's publish and
// a consumer's claim continuously land on neighboring slots. No page may ever
// be live twice, and the free count must return to the full window.
func Test_Allocator_InterleavedProducerConsumer(t *testing.T) {
	iters := 200_000
	if testing.Short() {
		iters = 20_000
	}

	a := mustNew(t, WithCapacityBits(8))
	live := make([]atomic.Uint32, a.Pages())
	var dupes atomic.Uint64

	claim := func(p []byte) {
		if !live[a.pageIndex(p)].CompareAndSwap(0, 1) {
			dupes.Add(1)
		}
	}
	release := func(p []byte) {
		live[a.pageIndex(p)].Store(0)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Free-then-allocate over a rolling page.
	go func() {
		defer wg.Done()
		p := a.Allocate()
		claim(p)
		for i := 0; i < iters; i++ {
			release(p)
			a.Free(p)
			p = a.Allocate()
			claim(p)
		}
		release(p)
		a.Free(p)
	}()

	// Allocate-then-free, independently.
	go func() {
		defer wg.Done()
		for i := 0; i < iters; i++ {
			p := a.Allocate()
			claim(p)
			release(p)
			a.Free(p)
		}
	}()

	wg.Wait()

	if n := dupes.Load(); n != 0 {
		t.Fatalf("%d pages were live twice", n)
	}
	if got := a.FreeCount(); got != a.Pages() {
		t.Fatalf("free count drifted: got %d, want %d", got, a.Pages())
	}
}

// BenchmarkAllocator_AllocateFree measures the single-threaded page
// round-trip: ring pop, mprotect to RW, ring push, mprotect to none.
func BenchmarkAllocator_AllocateFree(b *testing.B) {
	a := mustNew(b, WithCapacityBits(10))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		a.Free(a.Allocate())
	}
}

// BenchmarkAllocator_AllocateFree_Parallel measures the contended round-trip.
func BenchmarkAllocator_AllocateFree_Parallel(b *testing.B) {
	a := mustNew(b, WithCapacityBits(16))

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Free(a.Allocate())
		}
	})
}
