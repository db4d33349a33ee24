package main

import (
	"github.com/joshuapare/pagekit/page"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newTrapCmd())
}

func newTrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trap",
		Short: "Demonstrate the use-after-free trap (crashes the process)",
		Long: `The trap command allocates a page, writes to it, frees it, and then
dereferences the stale pointer. The process dies with a protection fault;
that crash is the allocator's entire reason to exist. A zero exit status
means the trap failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrap()
		},
	}
}

func runTrap() error {
	a, err := page.New(page.WithCapacityBits(4))
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.Allocate()
	p[0] = 0x5A
	printInfo("allocated page, wrote %#x at offset 0\n", p[0])

	a.Free(p)
	printInfo("freed the page; dereferencing the stale pointer now...\n")

	// This faults. The runtime reports an unexpected fault address and kills
	// the process; a non-crash here would be a bug in the allocator.
	p[0] = 0xFF

	printInfo("still alive: the trap FAILED\n")
	return nil
}
