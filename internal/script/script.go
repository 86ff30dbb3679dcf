// Package script decodes YAML allocation scripts and replays them against an
// arena or a stack, recording the allocator's offsets after every step.
//
// A script looks like:
//
//	allocator: stack
//	capacity: 1024
//	alignment: 16
//	provider: heap
//	ops:
//	  - {op: alloc, name: a, size: 560, align: 8}
//	  - {op: alloc, name: b, size: 120, align: 4}
//	  - {op: pop}
//	  - {op: free, name: a}
package script

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/pavanmanishd/linalloc"
)

// Allocator kinds.
const (
	Arena = "arena"
	Stack = "stack"
)

// Op kinds.
const (
	OpAlloc        = "alloc"
	OpResize       = "resize"
	OpPop          = "pop"
	OpFree         = "free"
	OpReset        = "reset"
	OpScratchBegin = "scratch_begin"
	OpScratchEnd   = "scratch_end"
)

// Script is a decoded allocation script.
type Script struct {
	Allocator string  `yaml:"allocator"`
	Capacity  int     `yaml:"capacity"`
	Alignment uintptr `yaml:"alignment,omitempty"`
	Provider  string  `yaml:"provider,omitempty"`
	Ops       []Op    `yaml:"ops"`
}

// Op is one step of a script. Name labels the block produced by alloc and
// selects the block targeted by resize and free.
type Op struct {
	Op    string  `yaml:"op"`
	Name  string  `yaml:"name,omitempty"`
	Size  int     `yaml:"size,omitempty"`
	Align uintptr `yaml:"align,omitempty"`
}

// Parse decodes and validates a script. Unknown fields are rejected.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "script: decode")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "script: open")
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks everything that can be checked without running the script.
func (s *Script) Validate() error {
	switch s.Allocator {
	case Arena, Stack:
	default:
		return errors.Newf("script: unknown allocator %q (want %q or %q)", s.Allocator, Arena, Stack)
	}
	if s.Capacity <= 0 {
		return errors.Newf("script: capacity must be positive, got %d", s.Capacity)
	}
	if s.Alignment != 0 && !linalloc.IsPowerOfTwo(s.Alignment) {
		return errors.Newf("script: alignment %d is not a power of two", s.Alignment)
	}
	switch s.Provider {
	case "", "heap", "mmap":
	default:
		return errors.Newf("script: unknown provider %q", s.Provider)
	}
	for i, op := range s.Ops {
		if err := op.validate(s.Allocator); err != nil {
			return errors.Wrapf(err, "script: op %d (%s)", i, op.Op)
		}
	}
	return nil
}

func (op Op) validate(allocator string) error {
	switch op.Op {
	case OpAlloc:
		if op.Size <= 0 {
			return errors.Newf("size must be positive, got %d", op.Size)
		}
	case OpResize:
		if allocator != Arena {
			return errors.New("resize needs an arena")
		}
		if op.Name == "" {
			return errors.New("resize needs a block name")
		}
		if op.Size <= 0 {
			return errors.Newf("size must be positive, got %d", op.Size)
		}
	case OpFree:
		if allocator != Stack {
			return errors.New("free needs a stack")
		}
		if op.Name == "" {
			return errors.New("free needs a block name")
		}
	case OpPop:
		if allocator != Stack {
			return errors.New("pop needs a stack")
		}
	case OpScratchBegin, OpScratchEnd:
		if allocator != Arena {
			return errors.Newf("%s needs an arena", op.Op)
		}
	case OpReset:
	default:
		return errors.New("unknown op")
	}
	// Resize may use any alignment; a bad one is reported by the arena.
	if op.Op != OpResize && op.Align != 0 && !linalloc.IsPowerOfTwo(op.Align) {
		return errors.Newf("align %d is not a power of two", op.Align)
	}
	return nil
}
