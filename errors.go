package linalloc

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfSpace indicates that the buffer cannot fit the request.
	ErrOutOfSpace = errors.New("linalloc: out of space")

	// ErrInvalidBlock indicates a slice that was not returned by the
	// allocator, such as one outside its buffer.
	ErrInvalidBlock = errors.New("linalloc: invalid block")

	// ErrAlreadyFree indicates a block at or above the current free offset.
	ErrAlreadyFree = errors.New("linalloc: block already free")

	// ErrEmpty indicates a pop on an allocator with no live blocks.
	ErrEmpty = errors.New("linalloc: allocator is empty")

	// ErrBadAlignment indicates an alignment that is not a power of two.
	ErrBadAlignment = errors.New("linalloc: alignment is not a power of two")
)
