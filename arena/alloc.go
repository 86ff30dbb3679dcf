package arena

import (
	"math"
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/linalloc"
	"github.com/pavanmanishd/linalloc/internal/check"
)

// Alloc returns a pointer to a zeroed T stored inside the arena, aligned to
// T's natural alignment. T must not contain Go pointers.
func Alloc[T any](a *Arena) (*T, error) {
	p, err := AllocUninitialized[T](a)
	if err != nil {
		return nil, err
	}
	var zero T
	*p = zero
	return p, nil
}

// AllocZeroed is identical to Alloc - provided for API consistency.
func AllocZeroed[T any](a *Arena) (*T, error) {
	return Alloc[T](a)
}

// AllocUninitialized returns a *T located in the arena without zeroing memory.
// This is faster than Alloc but the memory contents are whatever the buffer held.
func AllocUninitialized[T any](a *Arena) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		size = 1
	}
	b, err := a.AllocBytesAligned(size, unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// AllocSlice allocates a slice of n elements of type T inside the arena.
// The slice elements are not initialized.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	check.Precondition(n > 0, "arena: slice length must be positive, got %d", n)
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	check.Precondition(elemSize > 0, "arena: zero-sized element type")
	if elemSize > math.MaxInt/n {
		return nil, errors.Wrapf(linalloc.ErrOutOfSpace, "arena: %d elements of %d bytes", n, elemSize)
	}
	b, err := a.AllocBytesAligned(elemSize*n, unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// AllocSliceZeroed allocates a slice of n elements of type T with zeroed memory.
func AllocSliceZeroed[T any](a *Arena, n int) ([]T, error) {
	s, err := AllocSlice[T](a, n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}

// PtrAndKeepAlive returns t and calls runtime.KeepAlive on the arena.
// This is useful to prevent the arena from being garbage collected
// while the pointer is still in use in unsafe code.
func PtrAndKeepAlive[T any](a *Arena, t *T) *T {
	runtime.KeepAlive(a)
	return t
}
