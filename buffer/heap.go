package buffer

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/linalloc"
)

// DefaultHeapAlignment is the base alignment of Heap buffers (one cache line).
const DefaultHeapAlignment = 64

// Heap acquires buffers from the Go heap. The base address of every buffer
// is aligned to Alignment (DefaultHeapAlignment when zero), which keeps
// allocator offsets identical from run to run.
type Heap struct {
	Alignment uintptr
}

// Acquire allocates capacity bytes.
func (h Heap) Acquire(capacity int) ([]byte, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrCapacity, "heap: got %d", capacity)
	}
	align := h.Alignment
	if align == 0 {
		align = DefaultHeapAlignment
	}
	if !linalloc.IsPowerOfTwo(align) {
		return nil, errors.Wrapf(linalloc.ErrBadAlignment, "heap: alignment %d", align)
	}

	raw := make([]byte, capacity+int(align)-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int(linalloc.AlignForward(base, align) - base)
	return raw[off : off+capacity : off+capacity], nil
}

// Release is a no-op; the garbage collector reclaims the memory.
func (Heap) Release([]byte) error { return nil }
