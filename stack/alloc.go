package stack

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/linalloc"
	"github.com/pavanmanishd/linalloc/internal/check"
)

// Alloc pushes a zeroed T aligned to T's natural alignment and returns a
// pointer to it. T must not contain Go pointers.
func Alloc[T any](s *Stack) (*T, error) {
	var zero T
	b, err := s.AllocBytesAligned(sizeOf[T](), unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	p := (*T)(unsafe.Pointer(unsafe.SliceData(b)))
	*p = zero
	return p, nil
}

// AllocSlice pushes a block holding n elements of type T. The elements are
// not initialized.
func AllocSlice[T any](s *Stack, n int) ([]T, error) {
	check.Precondition(n > 0, "stack: slice length must be positive, got %d", n)
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	check.Precondition(elemSize > 0, "stack: zero-sized element type")
	if elemSize > math.MaxInt/n {
		return nil, errors.Wrapf(linalloc.ErrOutOfSpace, "stack: %d elements of %d bytes", n, elemSize)
	}
	b, err := s.AllocBytesAligned(elemSize*n, unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// Free frees the block holding *p and every block above it. See FreeAt.
func Free[T any](s *Stack, p *T) error {
	if p == nil {
		return errors.Wrap(linalloc.ErrInvalidBlock, "stack: free nil pointer")
	}
	return s.FreeAt(unsafe.Slice((*byte)(unsafe.Pointer(p)), sizeOf[T]()))
}

// FreeSlice frees the block backing xs and every block above it. See FreeAt.
func FreeSlice[T any](s *Stack, xs []T) error {
	if len(xs) == 0 {
		return errors.Wrap(linalloc.ErrInvalidBlock, "stack: free empty slice")
	}
	return s.FreeAt(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(xs))), len(xs)*sizeOf[T]()))
}

// sizeOf returns the block size used for a T; zero-sized types take one byte
// so that every block has a distinct address.
func sizeOf[T any]() int {
	var zero T
	if n := int(unsafe.Sizeof(zero)); n > 0 {
		return n
	}
	return 1
}
