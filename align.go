package linalloc

import (
	"unsafe"

	"github.com/pavanmanishd/linalloc/internal/check"
)

// DefaultAlignment is the alignment used when an allocator is not configured
// with WithAlignment: twice the pointer size, matching what general-purpose
// allocators guarantee.
const DefaultAlignment = 2 * unsafe.Sizeof(uintptr(0))

// IsPowerOfTwo reports whether x is a positive power of two.
func IsPowerOfTwo(x uintptr) bool {
	return x > 0 && x&(x-1) == 0
}

// AlignForward returns the smallest address >= addr that is a multiple of
// alignment. It panics if alignment is not a power of two.
func AlignForward(addr, alignment uintptr) uintptr {
	check.Precondition(IsPowerOfTwo(alignment),
		"AlignForward: alignment %d is not a power of two", alignment)
	mask := alignment - 1
	return (addr + mask) &^ mask
}

// PaddingWithHeader returns the number of bytes to skip from addr so that a
// block can start at addr+padding with a header of headerSize bytes right
// before it.
//
// The result is the smallest padding such that:
//
//	padding >= headerSize
//	(addr+padding) % alignment == 0
//	(addr+padding-headerSize) % headerAlignment == 0
//
// Both alignments must be powers of two and headerSize a multiple of
// headerAlignment (always true for the size of a Go struct).
func PaddingWithHeader(addr, alignment, headerSize, headerAlignment uintptr) uintptr {
	check.Precondition(IsPowerOfTwo(alignment),
		"PaddingWithHeader: alignment %d is not a power of two", alignment)
	check.Precondition(IsPowerOfTwo(headerAlignment),
		"PaddingWithHeader: header alignment %d is not a power of two", headerAlignment)
	check.Precondition(headerSize&(headerAlignment-1) == 0,
		"PaddingWithHeader: header size %d is not a multiple of its alignment %d", headerSize, headerAlignment)

	padding := AlignForward(addr, alignment) - addr
	if padding < headerSize {
		// Grow by whole alignment steps until the header fits.
		padding += AlignForward(headerSize-padding, alignment)
	}

	// A block aligned more loosely than its header can leave the header slot
	// misaligned; move the block up to the header's boundary.
	if (addr+padding-headerSize)&(headerAlignment-1) != 0 {
		padding = AlignForward(addr+padding, headerAlignment) - addr
	}
	return padding
}
