// Package arena implements a fixed-capacity bump allocator (memory arena).
// Typical usage: create one arena per request, allocate many temporary
// objects from it, then Reset() at the end of the request for O(1) cleanup.
package arena

import (
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/linalloc"
	"github.com/pavanmanishd/linalloc/buffer"
	"github.com/pavanmanishd/linalloc/internal/check"
)

// Arena is a bump allocator over a single buffer. Not goroutine-safe.
// Use SafeArena for concurrent access.
//
// Layout:
//
//	|block|padding|block|   free space   |
//	^             ^     ^                ^
//	0      previousOffset offset      capacity
type Arena struct {
	buf            buffer.Buffer
	mem            []byte
	offset         int // start of free space
	previousOffset int // start of the most recent block
	peak           int
	alignment      uintptr
	log            *slog.Logger
	released       bool
}

// New creates an Arena that manages, but does not own, buf.
func New(buf []byte, opts ...linalloc.Option) *Arena {
	check.Precondition(len(buf) > 0, "arena: New called with an empty buffer")
	return newArena(buffer.Borrow(buf), linalloc.NewConfig(opts...))
}

// NewOwned creates an Arena that owns a buffer of capacity bytes obtained
// from the configured provider. Release hands the buffer back.
func NewOwned(capacity int, opts ...linalloc.Option) (*Arena, error) {
	cfg := linalloc.NewConfig(opts...)
	buf, err := buffer.Acquire(cfg.Provider, capacity)
	if err != nil {
		return nil, errors.Wrap(err, "arena")
	}
	return newArena(buf, cfg), nil
}

func newArena(buf buffer.Buffer, cfg linalloc.Config) *Arena {
	return &Arena{
		buf:       buf,
		mem:       buf.Bytes(),
		alignment: cfg.Alignment,
		log:       cfg.Logger,
	}
}

// AllocBytes returns size bytes aligned to the arena's default alignment.
func (a *Arena) AllocBytes(size int) ([]byte, error) {
	a.panicIfReleased()
	return a.AllocBytesAligned(size, a.alignment)
}

// AllocBytesAligned returns a []byte of exactly size bytes whose first byte
// is aligned to alignment. The slice points into the arena's buffer and has
// no spare capacity. It fails with linalloc.ErrOutOfSpace when the buffer
// cannot fit the request; the arena is left unchanged.
func (a *Arena) AllocBytesAligned(size int, alignment uintptr) ([]byte, error) {
	a.panicIfReleased()
	check.Precondition(size > 0, "arena: allocation size must be positive, got %d", size)

	base := a.base()
	aligned := int(linalloc.AlignForward(base+uintptr(a.offset), alignment) - base)
	if aligned > len(a.mem) || size > len(a.mem)-aligned {
		a.log.Debug("arena: out of space",
			"requested", size, "alignment", alignment, "offset", a.offset, "capacity", len(a.mem))
		return nil, errors.Wrapf(linalloc.ErrOutOfSpace,
			"arena: %d bytes requested (%d required), %d remaining", size, aligned-a.offset+size, len(a.mem)-a.offset)
	}

	a.previousOffset = aligned
	a.offset = aligned + size
	a.notePeak()
	return a.mem[aligned:a.offset:a.offset], nil
}

// Resize changes the size of block, a slice previously returned by this
// arena, to newSize bytes.
//
// If block is the most recent allocation it grows or shrinks in place and
// the returned slice shares block's start. Otherwise a new block aligned to
// alignment is allocated and min(len(block), newSize) bytes are copied; the
// old block is not reclaimed. Resizing to the current length returns block
// unchanged.
func (a *Arena) Resize(block []byte, newSize int, alignment uintptr) ([]byte, error) {
	a.panicIfReleased()
	check.Precondition(newSize > 0, "arena: resize size must be positive, got %d", newSize)

	if newSize == len(block) {
		a.log.Debug("arena: redundant resize", "size", newSize)
		return block, nil
	}
	if !linalloc.IsPowerOfTwo(alignment) {
		return nil, errors.Wrapf(linalloc.ErrBadAlignment, "arena: resize alignment %d", alignment)
	}
	off, ok := a.offsetOf(block)
	if !ok {
		a.log.Debug("arena: resize of foreign block", "len", len(block))
		return nil, errors.Wrap(linalloc.ErrInvalidBlock, "arena: resize")
	}

	if off == a.previousOffset {
		if newSize > len(a.mem)-off {
			a.log.Debug("arena: out of space",
				"requested", newSize, "offset", off, "capacity", len(a.mem))
			return nil, errors.Wrapf(linalloc.ErrOutOfSpace,
				"arena: resize to %d bytes, %d available", newSize, len(a.mem)-off)
		}
		a.offset = off + newSize
		a.notePeak()
		return a.mem[off:a.offset:a.offset], nil
	}

	nb, err := a.AllocBytesAligned(newSize, alignment)
	if err != nil {
		return nil, err
	}
	copy(nb, block)
	return nb, nil
}

// Reset frees every block at once. The buffer is kept, and its contents are
// left as they are until overwritten.
func (a *Arena) Reset() {
	a.panicIfReleased()
	a.offset = 0
	a.previousOffset = 0
}

// Release gives up the buffer (returning it to its provider when owned) and
// makes the arena unusable. Any subsequent operation will panic.
func (a *Arena) Release() error {
	a.panicIfReleased()
	err := a.buf.Release()
	a.log.Debug("arena: released", "capacity", len(a.mem), "owned", a.buf.Owned())
	*a = Arena{released: true, log: a.log}
	return err
}

// Offset returns the offset of the start of free space.
func (a *Arena) Offset() int { return a.offset }

// PreviousOffset returns the offset of the most recently allocated block.
func (a *Arena) PreviousOffset() int { return a.previousOffset }

// Owned reports whether Release returns the buffer to a provider.
func (a *Arena) Owned() bool {
	return !a.released && a.buf.Owned()
}

// base returns the address of the first byte of the buffer.
func (a *Arena) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(a.mem)))
}

// offsetOf returns the offset of block's first byte within the buffer.
func (a *Arena) offsetOf(block []byte) (int, bool) {
	if len(block) == 0 {
		return 0, false
	}
	p := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	base := a.base()
	if p < base || p >= base+uintptr(len(a.mem)) {
		return 0, false
	}
	return int(p - base), true
}

func (a *Arena) notePeak() {
	if a.offset > a.peak {
		a.peak = a.offset
	}
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	check.Precondition(a != nil, "arena: nil *Arena")
	check.Live(a.released, "arena")
}
