package stack

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/linalloc/buffer"
)

// newTestBuffer returns a cache-line aligned buffer so offsets are stable.
func newTestBuffer(t testing.TB, capacity int) []byte {
	t.Helper()
	mem, err := buffer.Heap{}.Acquire(capacity)
	require.NoError(t, err)
	return mem
}

func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// offsetIn returns the offset of b's first byte within mem.
func offsetIn(mem, b []byte) int {
	return int(addrOf(b) - addrOf(mem))
}

// state captures the two offsets that define a stack's contents.
type state struct {
	offset, previousOffset int
}

func stateOf(s *Stack) state {
	return state{offset: s.Offset(), previousOffset: s.PreviousOffset()}
}

func requirePrecondition(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a precondition panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.HasAssertionFailure(err), "panic %v is not an assertion failure", err)
	}()
	fn()
}
