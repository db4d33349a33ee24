package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joshuapare/pagekit/page"
	"github.com/joshuapare/pagekit/page/sizeclass"
	"github.com/spf13/cobra"
)

var (
	stressWorkers  int
	stressBatch    int
	stressDuration time.Duration
	stressBits     int
	stressDiscard  bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressWorkers, "workers", 3, "Concurrent workers")
	cmd.Flags().IntVar(&stressBatch, "batch", 65536, "Pages held per worker batch")
	cmd.Flags().DurationVar(&stressDuration, "duration", time.Second, "How long to run")
	cmd.Flags().IntVar(&stressBits, "bits", 18, "log2 of the page count")
	cmd.Flags().BoolVar(&stressDiscard, "discard", false, "Discard physical pages on free")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a concurrent allocate/free smoke workload",
		Long: `The stress command runs the classic heap smoke workload against a fresh
allocator: each worker repeatedly allocates a batch of pages for randomized
power-of-two request sizes, then frees the whole batch. It reports throughput,
ring contention, and verifies the free count shows no drift after the run.

Example:
  pagectl stress
  pagectl stress --workers 8 --duration 5s --discard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

func runStress() error {
	if stressWorkers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if int64(stressWorkers)*int64(stressBatch) >= int64(1)<<stressBits {
		return fmt.Errorf("workers * batch must stay below 2^%d pages", stressBits)
	}

	a, err := page.New(
		page.WithCapacityBits(stressBits),
		page.WithDiscardOnFree(stressDiscard),
	)
	if err != nil {
		return err
	}
	defer a.Close()

	printVerbose("window: %d pages x %d bytes\n", a.Pages(), a.PageSize())

	var stop atomic.Bool
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < stressWorkers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			held := make([][]byte, 0, stressBatch)

			for !stop.Load() {
				for i := 0; i < stressBatch; i++ {
					request := 1 << (1 + rng.Intn(12))
					if !sizeclass.FitsPage(request, a.PageSize()) {
						continue
					}
					held = append(held, a.Allocate())
				}
				for _, p := range held {
					a.Free(p)
				}
				held = held[:0]
			}
		}(int64(w) + 1)
	}

	time.Sleep(stressDuration)
	stop.Store(true)
	wg.Wait()
	elapsed := time.Since(start)

	s := a.Stats()
	printInfo("ran %d workers for %s\n", stressWorkers, elapsed.Round(time.Millisecond))
	printInfo("allocations:  %d (%.0f/s)\n", s.AllocCalls,
		float64(s.AllocCalls)/elapsed.Seconds())
	printInfo("frees:        %d\n", s.FreeCalls)
	printInfo("cas retries:  %d\n", s.CASRetries)
	printInfo("slot spins:   %d\n", s.SlotSpins)

	if free := a.FreeCount(); free != a.Pages() {
		return fmt.Errorf("free count drifted: %d of %d pages free after drain",
			free, a.Pages())
	}
	printInfo("free count:   %d/%d (no drift)\n", a.FreeCount(), a.Pages())
	return nil
}
