package arena

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/linalloc"
)

func TestNew(t *testing.T) {
	mem := newTestBuffer(t, 1024)
	a := New(mem)

	assert.Equal(t, 1024, a.Capacity())
	assert.Zero(t, a.Offset())
	assert.Zero(t, a.PreviousOffset())
	assert.False(t, a.Owned())
	assert.Equal(t, linalloc.DefaultAlignment, a.alignment)

	requirePrecondition(t, func() { New(nil) })
	requirePrecondition(t, func() { New([]byte{}) })
}

func TestNewOwned(t *testing.T) {
	p := &countingProvider{}
	a, err := NewOwned(512, linalloc.WithProvider(p))
	require.NoError(t, err)

	assert.True(t, a.Owned())
	assert.Equal(t, 512, a.Capacity())
	assert.Equal(t, 1, p.acquired)

	require.NoError(t, a.Release())
	assert.Equal(t, 1, p.released)

	_, err = NewOwned(0)
	assert.Error(t, err)
}

func TestArenaAllocBytesAlignedOffsets(t *testing.T) {
	a := New(newTestBuffer(t, 1024))

	u8s, err := a.AllocBytesAligned(255, 1)
	require.NoError(t, err)
	for i := range u8s {
		u8s[i] = byte(i)
	}
	assert.Equal(t, 255, a.Offset())
	assert.Equal(t, 0, a.PreviousOffset())

	u32s, err := AllocSlice[uint32](a, 80)
	require.NoError(t, err)
	for i := range u32s {
		u32s[i] = uint32(i + 1000)
	}
	assert.Equal(t, 256, a.PreviousOffset(), "255 rounds up to the next 4-byte boundary")
	assert.Equal(t, 256+320, a.Offset())

	wide, err := a.AllocBytesAligned(240, 64)
	require.NoError(t, err)
	assert.Equal(t, 576, a.PreviousOffset())
	assert.Equal(t, 576+240, a.Offset())
	assert.Zero(t, addrOf(wide)%64)

	// Earlier blocks are untouched.
	for i := range u8s {
		require.Equal(t, byte(i), u8s[i])
	}
	for i := range u32s {
		require.Equal(t, uint32(i+1000), u32s[i])
	}
}

func TestArenaAllocBytes(t *testing.T) {
	a := New(newTestBuffer(t, 1024))

	sizes := []int{1, 17, 32, 5, 100}
	want := 0
	for _, size := range sizes {
		b, err := a.AllocBytes(size)
		require.NoError(t, err)
		assert.Len(t, b, size)
		assert.Equal(t, size, cap(b), "blocks carry no spare capacity")
		assert.Zero(t, addrOf(b)%linalloc.DefaultAlignment)

		start := int(linalloc.AlignForward(uintptr(want), linalloc.DefaultAlignment))
		want = start + size
		assert.Equal(t, start, a.PreviousOffset())
		assert.Equal(t, want, a.Offset())
	}
	assert.LessOrEqual(t, a.Offset(), a.Capacity())
}

func TestArenaAllocBytesConfiguredAlignment(t *testing.T) {
	a := New(newTestBuffer(t, 256), linalloc.WithAlignment(32))
	_, err := a.AllocBytes(1)
	require.NoError(t, err)
	b, err := a.AllocBytes(1)
	require.NoError(t, err)
	assert.Equal(t, 32, a.PreviousOffset())
	assert.Zero(t, addrOf(b)%32)
}

func TestArenaOutOfSpace(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := New(newTestBuffer(t, 64), linalloc.WithLogger(logger))

	_, err := a.AllocBytes(60)
	require.NoError(t, err)

	_, err = a.AllocBytes(8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, linalloc.ErrOutOfSpace))
	assert.Equal(t, 60, a.Offset(), "failed allocation leaves the arena unchanged")
	assert.Equal(t, 0, a.PreviousOffset())
	assert.Contains(t, logs.String(), "arena: out of space")

	// Alignment alone can exhaust the buffer.
	_, err = a.AllocBytesAligned(1, 128)
	assert.True(t, errors.Is(err, linalloc.ErrOutOfSpace))

	// The last bytes are still usable without padding.
	tail, err := a.AllocBytesAligned(4, 1)
	require.NoError(t, err)
	assert.Len(t, tail, 4)
	assert.Equal(t, 64, a.Offset())
}

func TestArenaAllocExactCapacity(t *testing.T) {
	a := New(newTestBuffer(t, 128))
	b, err := a.AllocBytes(128)
	require.NoError(t, err)
	assert.Len(t, b, 128)
	assert.Zero(t, a.Remaining())
}

func TestArenaAllocPreconditions(t *testing.T) {
	a := New(newTestBuffer(t, 64))
	requirePrecondition(t, func() { _, _ = a.AllocBytes(0) })
	requirePrecondition(t, func() { _, _ = a.AllocBytes(-1) })
	requirePrecondition(t, func() { _, _ = a.AllocBytesAligned(8, 3) })
	requirePrecondition(t, func() { _, _ = a.AllocBytesAligned(8, 0) })

	var nilArena *Arena
	requirePrecondition(t, func() { _, _ = nilArena.AllocBytes(8) })
}

func TestArenaReset(t *testing.T) {
	a := New(newTestBuffer(t, 1024))
	sizes := []int{3, 40, 7, 128, 64}

	record := func() [][2]int {
		var got [][2]int
		for _, size := range sizes {
			b, err := a.AllocBytes(size)
			require.NoError(t, err)
			b[0] = 0xEE
			got = append(got, [2]int{a.PreviousOffset(), a.Offset()})
		}
		return got
	}

	first := record()
	require.NotZero(t, a.SizeInUse())

	a.Reset()
	assert.Zero(t, a.Offset())
	assert.Zero(t, a.PreviousOffset())
	assert.Equal(t, 1024, a.Capacity(), "capacity survives Reset")

	assert.Equal(t, first, record(), "same sequence after Reset gives the same offsets")
}

func TestArenaResizeInPlace(t *testing.T) {
	a := New(newTestBuffer(t, 256))

	_, err := a.AllocBytes(16)
	require.NoError(t, err)
	last, err := a.AllocBytes(32)
	require.NoError(t, err)
	copy(last, "in-place resize keeps the bytes")
	start := a.PreviousOffset()

	grown, err := a.Resize(last, 100, 8)
	require.NoError(t, err)
	assert.Equal(t, addrOf(last), addrOf(grown), "last block grows without moving")
	assert.Len(t, grown, 100)
	assert.Equal(t, "in-place resize keeps the bytes", string(grown[:31]))
	assert.Equal(t, start, a.PreviousOffset())
	assert.Equal(t, start+100, a.Offset())

	shrunk, err := a.Resize(grown, 10, 8)
	require.NoError(t, err)
	assert.Equal(t, addrOf(last), addrOf(shrunk))
	assert.Equal(t, start+10, a.Offset())

	// Growth past capacity fails and changes nothing.
	_, err = a.Resize(shrunk, 1000, 8)
	assert.True(t, errors.Is(err, linalloc.ErrOutOfSpace))
	assert.Equal(t, start+10, a.Offset())

	// Filling the remainder exactly is allowed.
	full, err := a.Resize(shrunk, a.Capacity()-start, 8)
	require.NoError(t, err)
	assert.Equal(t, a.Capacity(), a.Offset())
	assert.Equal(t, addrOf(last), addrOf(full))
}

func TestArenaResizeCopies(t *testing.T) {
	a := New(newTestBuffer(t, 512))

	first, err := a.AllocBytes(24)
	require.NoError(t, err)
	copy(first, "abcdefghijklmnopqrstuvwx")
	_, err = a.AllocBytes(8)
	require.NoError(t, err)
	before := a.Offset()

	moved, err := a.Resize(first, 48, 16)
	require.NoError(t, err)
	assert.NotEqual(t, addrOf(first), addrOf(moved))
	assert.Len(t, moved, 48)
	assert.Equal(t, "abcdefghijklmnopqrstuvwx", string(moved[:24]))
	assert.Equal(t, int(linalloc.AlignForward(uintptr(before), 16)), a.PreviousOffset())
	assert.Zero(t, addrOf(moved)%16)

	// Shrinking a block that is no longer last also relocates.
	_, err = a.AllocBytes(8)
	require.NoError(t, err)
	small, err := a.Resize(moved, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(small))
	assert.NotEqual(t, addrOf(moved), addrOf(small))
}

func TestArenaResizeFailures(t *testing.T) {
	a := New(newTestBuffer(t, 128))
	b, err := a.AllocBytes(16)
	require.NoError(t, err)

	t.Run("same size", func(t *testing.T) {
		same, err := a.Resize(b, 16, 8)
		require.NoError(t, err)
		assert.Equal(t, addrOf(b), addrOf(same))
		assert.Equal(t, 16, a.Offset())
	})

	t.Run("bad alignment", func(t *testing.T) {
		_, err := a.Resize(b, 32, 12)
		assert.True(t, errors.Is(err, linalloc.ErrBadAlignment))
	})

	t.Run("nil block", func(t *testing.T) {
		_, err := a.Resize(nil, 32, 8)
		assert.True(t, errors.Is(err, linalloc.ErrInvalidBlock))
	})

	t.Run("foreign block", func(t *testing.T) {
		_, err := a.Resize(make([]byte, 16), 32, 8)
		assert.True(t, errors.Is(err, linalloc.ErrInvalidBlock))
	})

	t.Run("relocation out of space", func(t *testing.T) {
		_, err := a.AllocBytes(8)
		require.NoError(t, err)
		_, err = a.Resize(b, 200, 8)
		assert.True(t, errors.Is(err, linalloc.ErrOutOfSpace))
	})

	requirePrecondition(t, func() { _, _ = a.Resize(b, 0, 8) })
	assert.LessOrEqual(t, a.PreviousOffset(), a.Offset())
}

func TestArenaRelease(t *testing.T) {
	a := New(newTestBuffer(t, 128))
	_, err := a.AllocBytes(64)
	require.NoError(t, err)

	require.NoError(t, a.Release())
	assert.Zero(t, a.Capacity())
	assert.False(t, a.Owned())

	ops := map[string]func(){
		"AllocBytes": func() { _, _ = a.AllocBytes(1) },
		"Resize":     func() { _, _ = a.Resize(nil, 1, 8) },
		"Reset":      func() { a.Reset() },
		"Release":    func() { _ = a.Release() },
		"Scratch":    func() { a.ScratchBegin() },
		"Alloc":      func() { _, _ = Alloc[int64](a) },
	}
	for name, op := range ops {
		t.Run(fmt.Sprintf("%s after Release", name), func(t *testing.T) {
			requirePrecondition(t, op)
		})
	}
}
