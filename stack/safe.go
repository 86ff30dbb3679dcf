package stack

import (
	"sync"

	"github.com/pavanmanishd/linalloc"
)

// SafeStack is a mutex-protected wrapper around Stack. Pop and FreeAt act on
// whichever block is on top, so goroutines sharing one stack should
// bracket their work with WithFrame rather than popping individually.
type SafeStack struct {
	mu sync.Mutex
	s  *Stack
}

// NewSafeStack creates a thread-safe stack that manages, but does not own, buf.
func NewSafeStack(buf []byte, opts ...linalloc.Option) *SafeStack {
	return &SafeStack{s: New(buf, opts...)}
}

// NewSafeStackOwned creates a thread-safe stack that owns capacity bytes.
func NewSafeStackOwned(capacity int, opts ...linalloc.Option) (*SafeStack, error) {
	s, err := NewOwned(capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &SafeStack{s: s}, nil
}

// AllocBytes thread-safely pushes size bytes with the default alignment.
func (ss *SafeStack) AllocBytes(size int) ([]byte, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.AllocBytes(size)
}

// AllocBytesAligned thread-safely pushes size bytes aligned to alignment.
func (ss *SafeStack) AllocBytesAligned(size int, alignment uintptr) ([]byte, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.AllocBytesAligned(size, alignment)
}

// Pop thread-safely frees the top block.
func (ss *SafeStack) Pop() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.Pop()
}

// FreeAt thread-safely frees block and every block above it.
func (ss *SafeStack) FreeAt(block []byte) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.FreeAt(block)
}

// WithFrame runs fn on the underlying stack holding the lock throughout.
// When fn returns, blocks are popped until the stack is no higher than it
// was before the call.
func (ss *SafeStack) WithFrame(fn func(s *Stack) error) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	mark := ss.s.Offset()
	defer func() {
		for ss.s.Offset() > mark {
			if ss.s.Pop() != nil {
				return
			}
		}
	}()
	return fn(ss.s)
}

// Reset thread-safely frees every block.
func (ss *SafeStack) Reset() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.s.Reset()
}

// Release thread-safely releases the buffer and makes the stack unusable.
func (ss *SafeStack) Release() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.Release()
}

// SafeAlloc thread-safely pushes a zeroed T.
func SafeAlloc[T any](ss *SafeStack) (*T, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return Alloc[T](ss.s)
}

// SafeAllocSlice thread-safely pushes a slice of n elements of type T.
func SafeAllocSlice[T any](ss *SafeStack, n int) ([]T, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return AllocSlice[T](ss.s, n)
}

// SizeInUse thread-safely returns the free offset.
func (ss *SafeStack) SizeInUse() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.SizeInUse()
}

// Metrics thread-safely returns a snapshot of stack statistics.
func (ss *SafeStack) Metrics() StackMetrics {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.Metrics()
}
