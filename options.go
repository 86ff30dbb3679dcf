package linalloc

import (
	"log/slog"

	"github.com/pavanmanishd/linalloc/internal/check"
	"github.com/pavanmanishd/linalloc/internal/logging"
)

// Provider acquires and releases the raw backing buffers of owned allocators.
type Provider interface {
	// Acquire returns a buffer of exactly capacity bytes.
	Acquire(capacity int) ([]byte, error)
	// Release gives back a buffer obtained from Acquire.
	Release(buf []byte) error
}

// Config holds the settings shared by every allocator.
type Config struct {
	// Alignment used by AllocBytes and the typed helpers' fallbacks.
	Alignment uintptr
	// Logger receives debug records about rejected requests.
	Logger *slog.Logger
	// Provider backs NewOwned. Nil selects the Go heap.
	Provider Provider
}

// Option configures an allocator.
type Option func(*Config)

// WithAlignment sets the default alignment. It panics if alignment is not a
// power of two.
func WithAlignment(alignment uintptr) Option {
	check.Precondition(IsPowerOfTwo(alignment),
		"WithAlignment: alignment %d is not a power of two", alignment)
	return func(c *Config) {
		c.Alignment = alignment
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithProvider sets the provider used by NewOwned.
func WithProvider(p Provider) Option {
	return func(c *Config) {
		c.Provider = p
	}
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) Config {
	c := Config{Alignment: DefaultAlignment}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Logger == nil {
		c.Logger = logging.Discard
	}
	return c
}
