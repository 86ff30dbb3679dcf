//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package buffer

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Mmap acquires page-aligned buffers from anonymous private mappings, outside
// the Go heap. With Lock set the pages are also locked into RAM.
type Mmap struct {
	Lock bool
}

// Acquire maps capacity bytes of zeroed memory.
func (m Mmap) Acquire(capacity int) ([]byte, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrCapacity, "mmap: got %d", capacity)
	}
	b, err := unix.Mmap(-1, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap: map %d bytes", capacity)
	}
	if m.Lock {
		if err := unix.Mlock(b); err != nil {
			_ = unix.Munmap(b)
			return nil, errors.Wrap(err, "mmap: lock")
		}
	}
	return b, nil
}

// Release unmaps a buffer returned by Acquire.
func (m Mmap) Release(b []byte) error {
	if m.Lock {
		if err := unix.Munlock(b); err != nil {
			return errors.Wrap(err, "mmap: unlock")
		}
	}
	if err := unix.Munmap(b); err != nil {
		return errors.Wrap(err, "mmap: unmap")
	}
	return nil
}
