//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package buffer

// Mmap is unavailable on this platform; Acquire always fails.
type Mmap struct {
	Lock bool
}

func (Mmap) Acquire(int) ([]byte, error) { return nil, ErrUnsupported }

func (Mmap) Release([]byte) error { return ErrUnsupported }
