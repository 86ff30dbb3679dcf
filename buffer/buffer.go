// Package buffer manages the backing memory of the allocators.
//
// A buffer is either borrowed (the caller keeps ownership and outlives the
// allocator) or owned (acquired from a linalloc.Provider and handed back to
// it exactly once on Release). The two cases are distinct types so that the
// release path is decided by the value, not by a flag.
package buffer

import (
	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/linalloc"
)

var (
	// ErrReleased indicates a second Release of an owned buffer.
	ErrReleased = errors.New("buffer: already released")

	// ErrCapacity indicates a non-positive capacity request.
	ErrCapacity = errors.New("buffer: capacity must be positive")

	// ErrUnsupported indicates a provider that is unavailable on this platform.
	ErrUnsupported = errors.New("buffer: provider not supported on this platform")
)

// Buffer is the memory an allocator manages.
type Buffer interface {
	// Bytes returns the managed memory. It is nil after an owned buffer is released.
	Bytes() []byte
	// Owned reports whether Release hands the memory back to a provider.
	Owned() bool
	// Release gives up the memory.
	Release() error
}

var (
	_ Buffer = (*Borrowed)(nil)
	_ Buffer = (*Owned)(nil)
)

// Borrowed is memory whose lifetime is managed by the caller.
type Borrowed struct {
	b []byte
}

// Borrow wraps b without taking ownership.
func Borrow(b []byte) *Borrowed {
	return &Borrowed{b: b}
}

func (b *Borrowed) Bytes() []byte { return b.b }

func (b *Borrowed) Owned() bool { return false }

// Release is a no-op; the caller still owns the memory.
func (b *Borrowed) Release() error { return nil }

// Owned is memory acquired from a provider.
type Owned struct {
	b        []byte
	provider linalloc.Provider
}

// Acquire obtains capacity bytes from p. A nil p uses Heap{}.
func Acquire(p linalloc.Provider, capacity int) (*Owned, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrCapacity, "acquire %d bytes", capacity)
	}
	if p == nil {
		p = Heap{}
	}
	b, err := p.Acquire(capacity)
	if err != nil {
		return nil, errors.Wrapf(err, "buffer: acquire %d bytes", capacity)
	}
	if len(b) != capacity {
		_ = p.Release(b)
		return nil, errors.Newf("buffer: provider returned %d bytes, want %d", len(b), capacity)
	}
	return &Owned{b: b, provider: p}, nil
}

func (o *Owned) Bytes() []byte { return o.b }

func (o *Owned) Owned() bool { return true }

// Release returns the memory to its provider. Only the first call reaches
// the provider; later calls return ErrReleased.
func (o *Owned) Release() error {
	if o.b == nil {
		return ErrReleased
	}
	b := o.b
	o.b = nil
	if err := o.provider.Release(b); err != nil {
		return errors.Wrap(err, "buffer: release")
	}
	return nil
}
