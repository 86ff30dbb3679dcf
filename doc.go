// Package linalloc implements linear, offset-based memory allocators over a
// single contiguous byte buffer.
//
// # Overview
//
// Two allocators share the alignment arithmetic in this package:
//
//   - arena.Arena: a bump allocator. Blocks are only reclaimed wholesale with
//     Reset, by resizing the most recent block, or by ending a Scratch
//     checkpoint.
//   - stack.Stack: a LIFO allocator. Every block is preceded by a header that
//     records its padding and the offset of the block below it, so the top
//     block can be popped and any live block can be freed together with
//     everything allocated after it.
//
// Neither allocator ever grows its buffer. Running out of space is reported
// as ErrOutOfSpace and the caller decides how to recover.
//
// # Basic Usage
//
//	a, err := arena.NewOwned(64 << 10)
//	if err != nil {
//		return err
//	}
//	defer a.Release()
//
//	buf, err := a.AllocBytes(1024)
//	ids, err := arena.AllocSlice[uint64](a, 128)
//
//	s := a.ScratchBegin()
//	tmp, err := a.AllocBytes(4096) // temporary
//	s.End()                         // tmp is gone
//
//	st := stack.New(make([]byte, 4096))
//	blk, err := st.AllocBytesAligned(560, 8)
//	err = st.Pop()
//
// # Buffers
//
// An allocator either borrows a caller-supplied slice (New) or owns one
// acquired from a linalloc.Provider (NewOwned). Owned buffers are returned to
// their provider exactly once, by Release. The buffer package offers a Go
// heap provider and an anonymous mmap provider.
//
// # Errors
//
// Recoverable conditions (exhausted capacity, popping an empty stack,
// freeing an address that is out of range or already free) return errors
// wrapping the sentinels in this package; test them with errors.Is.
// Precondition violations (non-power-of-two alignment, zero-sized requests,
// use after Release) panic with an assertion failure.
//
// # Thread Safety
//
// Arena and Stack are not safe for concurrent use. SafeArena and SafeStack
// wrap each call in a mutex for callers that share one allocator between
// goroutines.
//
// # Important Notes
//
//   - Returned slices alias the allocator's buffer and are only valid until the
//     block is freed, reset or released.
//   - Memory is not zeroed unless using Alloc or AllocSliceZeroed.
//   - Typed helpers must only be used with types that hold no Go pointers; the
//     garbage collector does not scan the buffer.
package linalloc
