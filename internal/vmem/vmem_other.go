//go:build !linux && !darwin

package vmem

// The allocator's use-after-free trap requires per-page protection changes on
// anonymous mappings. On platforms where we don't provide that, construction
// fails up front rather than silently losing the trap.

func ReserveWindow(n int) ([]byte, error) { return nil, ErrUnsupported }

func ReserveRW(n int) ([]byte, error) { return nil, ErrUnsupported }

func SetAccessible(b []byte, accessible bool) error { return ErrUnsupported }

func Discard(b []byte) error { return ErrUnsupported }

func Release(b []byte) error { return nil }
