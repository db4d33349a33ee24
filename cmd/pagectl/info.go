package main

import (
	"fmt"
	"os"

	"github.com/joshuapare/pagekit/page"
	"github.com/joshuapare/pagekit/page/sizeclass"
	"github.com/spf13/cobra"
)

var infoBits int

func init() {
	cmd := newInfoCmd()
	cmd.Flags().IntVar(&infoBits, "bits", page.DefaultCapacityBits,
		"log2 of the page count")
	rootCmd.AddCommand(cmd)
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print window geometry for a given capacity",
		Long: `The info command prints the geometry an allocator of the given capacity
would reserve: page count, page size, window span, and ring footprint. It does
not construct an allocator.

Example:
  pagectl info
  pagectl info --bits 18`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
}

func runInfo() error {
	if infoBits < 1 || infoBits > page.DefaultCapacityBits {
		return fmt.Errorf("bits must be in [1, %d]", page.DefaultCapacityBits)
	}

	pageSize := os.Getpagesize()
	pages := int64(1) << infoBits

	printInfo("Page size:      %d bytes\n", pageSize)
	printInfo("Pages:          %d (2^%d)\n", pages, infoBits)
	printInfo("Window:         %s of reserved address space\n", fmtBytes(pages*int64(pageSize)))
	printInfo("Slot ring:      %s resident\n", fmtBytes(pages*4))
	printInfo("Size classes:   %v\n", sizeclass.Classes(pageSize))
	return nil
}

func fmtBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%d GiB", n>>30)
	case n >= 1<<20:
		return fmt.Sprintf("%d MiB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%d KiB", n>>10)
	}
	return fmt.Sprintf("%d B", n)
}
