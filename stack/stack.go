// Package stack implements a fixed-capacity LIFO allocator.
//
// Every block is preceded by a BlockHeader recording how far back the block
// starts and where the previous block lives, so blocks can be released in
// reverse order with Pop, or several at once with FreeAt.
package stack

import (
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/linalloc"
	"github.com/pavanmanishd/linalloc/buffer"
	"github.com/pavanmanishd/linalloc/internal/check"
)

// BlockHeader is stored in the buffer immediately before each block.
type BlockHeader struct {
	// Padding is the distance from the end of the previous block to the
	// start of this one, header included.
	Padding uintptr
	// Capacity is the requested block size.
	Capacity uintptr
	// PreviousOffset is the offset of the block that was on top before this
	// one, or 0 if this block is the bottom of the stack.
	PreviousOffset uintptr
}

// HeaderSize is the number of bytes every block reserves for its header.
const HeaderSize = unsafe.Sizeof(BlockHeader{})

const headerAlignment = unsafe.Alignof(BlockHeader{})

// Stack is a LIFO allocator over a single buffer. Not goroutine-safe.
// Use SafeStack for concurrent access.
//
// Layout:
//
//	|pad|hdr|block|pad|hdr|block|   free space   |
//	                        ^     ^                ^
//	          previousOffset      offset      capacity
type Stack struct {
	buf            buffer.Buffer
	mem            []byte
	offset         int // start of free space
	previousOffset int // start of the top block
	peak           int
	alignment      uintptr
	log            *slog.Logger
	released       bool
}

// New creates a Stack that manages, but does not own, buf.
func New(buf []byte, opts ...linalloc.Option) *Stack {
	check.Precondition(len(buf) > 0, "stack: New called with an empty buffer")
	return newStack(buffer.Borrow(buf), linalloc.NewConfig(opts...))
}

// NewOwned creates a Stack that owns a buffer of capacity bytes obtained
// from the configured provider. Release hands the buffer back.
func NewOwned(capacity int, opts ...linalloc.Option) (*Stack, error) {
	cfg := linalloc.NewConfig(opts...)
	buf, err := buffer.Acquire(cfg.Provider, capacity)
	if err != nil {
		return nil, errors.Wrap(err, "stack")
	}
	return newStack(buf, cfg), nil
}

func newStack(buf buffer.Buffer, cfg linalloc.Config) *Stack {
	return &Stack{
		buf:       buf,
		mem:       buf.Bytes(),
		alignment: cfg.Alignment,
		log:       cfg.Logger,
	}
}

// AllocBytes pushes a block of size bytes aligned to the stack's default
// alignment.
func (s *Stack) AllocBytes(size int) ([]byte, error) {
	s.panicIfReleased()
	return s.AllocBytesAligned(size, s.alignment)
}

// AllocBytesAligned pushes a block of exactly size bytes whose first byte is
// aligned to alignment. The padding in front of the block always has room
// for its header. It fails with linalloc.ErrOutOfSpace when the padded block
// does not fit; the stack is left unchanged.
func (s *Stack) AllocBytesAligned(size int, alignment uintptr) ([]byte, error) {
	s.panicIfReleased()
	check.Precondition(size > 0, "stack: allocation size must be positive, got %d", size)
	check.Precondition(linalloc.IsPowerOfTwo(alignment),
		"stack: alignment %d is not a power of two", alignment)

	free := len(s.mem) - s.offset
	padding := int(linalloc.PaddingWithHeader(s.base()+uintptr(s.offset), alignment, HeaderSize, headerAlignment))
	if padding > free || size > free-padding {
		s.log.Debug("stack: out of space",
			"requested", size, "padding", padding, "offset", s.offset, "capacity", len(s.mem))
		return nil, errors.Wrapf(linalloc.ErrOutOfSpace,
			"stack: %d bytes requested (%d required), %d remaining", size, padding+size, free)
	}

	start := s.offset + padding
	*s.header(start) = BlockHeader{
		Padding:        uintptr(padding),
		Capacity:       uintptr(size),
		PreviousOffset: uintptr(s.previousOffset),
	}
	s.previousOffset = start
	s.offset = start + size
	if s.offset > s.peak {
		s.peak = s.offset
	}
	return s.mem[start:s.offset:s.offset], nil
}

// Pop frees the top block. It returns linalloc.ErrEmpty if nothing is
// allocated. Slices returned for the popped block must no longer be used.
func (s *Stack) Pop() error {
	s.panicIfReleased()
	if s.offset == 0 {
		return errors.Wrap(linalloc.ErrEmpty, "stack: pop")
	}
	h := *s.header(s.previousOffset)
	s.offset = s.previousOffset - int(h.Padding)
	s.previousOffset = int(h.PreviousOffset)
	return nil
}

// FreeAt frees block together with every block allocated after it. block
// must be a slice returned by this stack; only its first byte is examined.
//
// Slices outside the buffer, or whose start cannot carry a header, fail with
// linalloc.ErrInvalidBlock. Blocks that were already freed fail with
// linalloc.ErrAlreadyFree. On failure the stack is left unchanged.
func (s *Stack) FreeAt(block []byte) error {
	s.panicIfReleased()
	start, err := s.locate(block)
	if err != nil {
		s.log.Debug("stack: free rejected", "err", err, "offset", s.offset)
		return errors.Wrap(err, "stack: free")
	}
	h := *s.header(start)
	s.offset = start - int(h.Padding)
	s.previousOffset = int(h.PreviousOffset)
	return nil
}

// HeaderOf returns the header stored in front of block. It validates block
// the same way FreeAt does.
func (s *Stack) HeaderOf(block []byte) (BlockHeader, error) {
	s.panicIfReleased()
	start, err := s.locate(block)
	if err != nil {
		return BlockHeader{}, errors.Wrap(err, "stack: header")
	}
	return *s.header(start), nil
}

// Top returns the header of the top block, or false if the stack is empty.
func (s *Stack) Top() (BlockHeader, bool) {
	s.panicIfReleased()
	if s.offset == 0 {
		return BlockHeader{}, false
	}
	return *s.header(s.previousOffset), true
}

// Depth returns the number of live blocks. It walks the header chain.
func (s *Stack) Depth() int {
	s.panicIfReleased()
	n := 0
	for off := s.previousOffset; off != 0; off = int(s.header(off).PreviousOffset) {
		n++
	}
	return n
}

// Reset frees every block at once.
func (s *Stack) Reset() {
	s.panicIfReleased()
	s.offset = 0
	s.previousOffset = 0
}

// Release gives up the buffer (returning it to its provider when owned) and
// makes the stack unusable. Any subsequent operation will panic.
func (s *Stack) Release() error {
	s.panicIfReleased()
	err := s.buf.Release()
	s.log.Debug("stack: released", "capacity", len(s.mem), "owned", s.buf.Owned())
	*s = Stack{released: true, log: s.log}
	return err
}

// Offset returns the offset of the start of free space.
func (s *Stack) Offset() int { return s.offset }

// PreviousOffset returns the offset of the top block.
func (s *Stack) PreviousOffset() int { return s.previousOffset }

// Owned reports whether Release returns the buffer to a provider.
func (s *Stack) Owned() bool {
	return !s.released && s.buf.Owned()
}

// locate returns the offset of block's first byte after checking that it
// could be the start of a live block.
func (s *Stack) locate(block []byte) (int, error) {
	if len(block) == 0 {
		return 0, errors.Wrap(linalloc.ErrInvalidBlock, "empty block")
	}
	base := s.base()
	p := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	if p < base || p >= base+uintptr(len(s.mem)) {
		return 0, errors.Wrapf(linalloc.ErrInvalidBlock, "address %#x outside buffer", p)
	}
	start := int(p - base)
	if start >= s.offset {
		return 0, errors.Wrapf(linalloc.ErrAlreadyFree, "offset %d at or above free offset %d", start, s.offset)
	}
	if start < int(HeaderSize) || (p-HeaderSize)%headerAlignment != 0 {
		return 0, errors.Wrapf(linalloc.ErrInvalidBlock, "offset %d cannot carry a header", start)
	}
	h := s.header(start)
	if h.Padding < HeaderSize || h.Padding > uintptr(start) ||
		h.PreviousOffset >= uintptr(start) ||
		h.Capacity > uintptr(s.offset-start) {
		return 0, errors.Wrapf(linalloc.ErrInvalidBlock, "offset %d has no block header", start)
	}
	return start, nil
}

// header returns the header of the block starting at off.
func (s *Stack) header(off int) *BlockHeader {
	return (*BlockHeader)(unsafe.Pointer(&s.mem[off-int(HeaderSize)]))
}

// base returns the address of the first byte of the buffer.
func (s *Stack) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s.mem)))
}

// panicIfReleased panics if the stack has been released.
func (s *Stack) panicIfReleased() {
	check.Precondition(s != nil, "stack: nil *Stack")
	check.Live(s.released, "stack")
}
