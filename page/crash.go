package page

import (
	"fmt"
	"os"
)

// Diagnostics on stderr for cold paths - controlled by PAGEKIT_LOG env var.
var logOps = os.Getenv("PAGEKIT_LOG") != ""

// Free-argument validation - controlled by PAGEKIT_PARANOID env var.
// Release builds trust the caller; the heap above us already knows which
// pages it handed out.
var paranoid = os.Getenv("PAGEKIT_PARANOID") != ""

// fatalf terminates the process. Allocate and Free have no error channel:
// exhaustion means more than the window's worth of live allocations (a
// programming error, not a transient), and a failed protection change leaves
// the trap guarantee void. Neither has a meaningful local recovery.
//
// Declared as a variable so tests can substitute a hook; a substitute must
// not return.
var fatalf = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "page: fatal: "+format+"\n", args...)
	os.Exit(2)
}

// logf prints cold-path diagnostics when PAGEKIT_LOG is set.
func logf(format string, args ...any) {
	if logOps {
		fmt.Fprintf(os.Stderr, "[PAGE] "+format+"\n", args...)
	}
}
