package arena

import (
	"runtime"
	"sync"

	"github.com/pavanmanishd/linalloc"
)

// SafeArena is a mutex-protected wrapper around Arena for callers that share
// one arena between goroutines. Every call holds the lock for its duration.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a thread-safe arena that manages, but does not own, buf.
func NewSafeArena(buf []byte, opts ...linalloc.Option) *SafeArena {
	return &SafeArena{a: New(buf, opts...)}
}

// NewSafeArenaOwned creates a thread-safe arena that owns capacity bytes.
func NewSafeArenaOwned(capacity int, opts ...linalloc.Option) (*SafeArena, error) {
	a, err := NewOwned(capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &SafeArena{a: a}, nil
}

// AllocBytes thread-safely allocates size bytes with the default alignment.
func (s *SafeArena) AllocBytes(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocBytes(size)
}

// AllocBytesAligned thread-safely allocates size bytes aligned to alignment.
func (s *SafeArena) AllocBytesAligned(size int, alignment uintptr) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocBytesAligned(size, alignment)
}

// Resize thread-safely resizes block. Only the goroutine that made the most
// recent allocation can expect an in-place resize.
func (s *SafeArena) Resize(block []byte, newSize int, alignment uintptr) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Resize(block, newSize, alignment)
}

// WithScratch runs fn on the underlying arena inside a checkpoint, holding
// the lock throughout. Everything fn allocates is discarded when it returns.
func (s *SafeArena) WithScratch(fn func(a *Arena) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.a.ScratchBegin()
	defer sc.End()
	return fn(s.a)
}

// Reset thread-safely frees every block.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release thread-safely releases the buffer and makes the arena unusable.
func (s *SafeArena) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Release()
}

// Generic allocation functions for SafeArena

// SafeAlloc thread-safely returns a pointer to a zeroed T stored inside the arena.
func SafeAlloc[T any](s *SafeArena) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.a)
}

// SafeAllocSlice thread-safely allocates a slice of n elements of type T.
func SafeAllocSlice[T any](s *SafeArena, n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.a, n)
}

// SafeAllocSliceZeroed thread-safely allocates a zeroed slice of n elements.
func SafeAllocSliceZeroed[T any](s *SafeArena, n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSliceZeroed[T](s.a, n)
}

// SafePtrAndKeepAlive thread-safely returns t and calls runtime.KeepAlive on the arena.
func SafePtrAndKeepAlive[T any](s *SafeArena, t *T) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	runtime.KeepAlive(s.a)
	return t
}

// Thread-safe metrics for SafeArena

// SizeInUse thread-safely returns the free offset.
func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// Utilization thread-safely returns the ratio of bytes in use to capacity.
func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
