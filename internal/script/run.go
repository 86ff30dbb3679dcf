package script

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/linalloc"
	"github.com/pavanmanishd/linalloc/arena"
	"github.com/pavanmanishd/linalloc/buffer"
	"github.com/pavanmanishd/linalloc/internal/logging"
	"github.com/pavanmanishd/linalloc/stack"
)

var (
	// ErrUnknownBlock is recorded when resize or free names a block that no
	// earlier alloc produced.
	ErrUnknownBlock = errors.New("script: unknown block")

	// ErrNoScratch is recorded for scratch_end without an open scratch_begin.
	ErrNoScratch = errors.New("script: no open scratch")
)

// Step is the allocator state after one op.
type Step struct {
	Index          int    `json:"index"`
	Op             string `json:"op"`
	Name           string `json:"name,omitempty"`
	Size           int    `json:"size,omitempty"`
	Offset         int    `json:"offset"`
	PreviousOffset int    `json:"previous_offset"`
	Err            string `json:"error,omitempty"`
}

// Summary is the allocator state after the last op.
type Summary struct {
	Capacity    int     `json:"capacity"`
	SizeInUse   int     `json:"size_in_use"`
	Remaining   int     `json:"remaining"`
	Peak        int     `json:"peak"`
	Depth       int     `json:"depth,omitempty"`
	Utilization float64 `json:"utilization"`
}

// Result is the outcome of Run.
type Result struct {
	Allocator string  `json:"allocator"`
	Steps     []Step  `json:"steps"`
	Final     Summary `json:"final"`
}

// Failed returns the number of steps that recorded an error.
func (r *Result) Failed() int {
	n := 0
	for _, st := range r.Steps {
		if st.Err != "" {
			n++
		}
	}
	return n
}

// Run replays s against a freshly acquired allocator and releases it before
// returning. Recoverable allocator errors are recorded on their step and do
// not stop the replay; Run itself fails only if the allocator cannot be
// created or released.
func Run(s *Script, log *slog.Logger) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard
	}

	opts := []linalloc.Option{linalloc.WithLogger(log)}
	if s.Alignment != 0 {
		opts = append(opts, linalloc.WithAlignment(s.Alignment))
	}
	if s.Provider == "mmap" {
		opts = append(opts, linalloc.WithProvider(buffer.Mmap{}))
	}

	m, err := newMachine(s.Allocator, s.Capacity, opts)
	if err != nil {
		return nil, err
	}

	defaultAlign := s.Alignment
	if defaultAlign == 0 {
		defaultAlign = linalloc.DefaultAlignment
	}
	r := &runner{m: m, blocks: make(map[string][]byte), defaultAlign: defaultAlign}
	res := &Result{Allocator: s.Allocator, Steps: make([]Step, 0, len(s.Ops))}
	for i, op := range s.Ops {
		st := r.step(op)
		st.Index = i
		log.Debug("script: step", "index", i, "op", op.Op, "name", op.Name,
			"offset", st.Offset, "previous_offset", st.PreviousOffset, "error", st.Err)
		res.Steps = append(res.Steps, st)
	}
	res.Final = m.summary()

	if err := m.release(); err != nil {
		return nil, errors.Wrap(err, "script: release")
	}
	return res, nil
}

// machine is the part of an allocator a script drives.
type machine interface {
	alloc(size int, align uintptr) ([]byte, error)
	offsets() (offset, previousOffset int)
	reset()
	release() error
	summary() Summary
}

func newMachine(kind string, capacity int, opts []linalloc.Option) (machine, error) {
	if kind == Arena {
		a, err := arena.NewOwned(capacity, opts...)
		if err != nil {
			return nil, err
		}
		return &arenaMachine{a: a}, nil
	}
	st, err := stack.NewOwned(capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &stackMachine{s: st}, nil
}

type runner struct {
	m            machine
	blocks       map[string][]byte
	defaultAlign uintptr
}

func (r *runner) step(op Op) Step {
	st := Step{Op: op.Op, Name: op.Name, Size: op.Size}
	if err := r.apply(op); err != nil {
		st.Err = err.Error()
	}
	st.Offset, st.PreviousOffset = r.m.offsets()
	return st
}

func (r *runner) apply(op Op) error {
	align := op.Align
	if align == 0 {
		align = r.defaultAlign
	}

	switch op.Op {
	case OpAlloc:
		b, err := r.m.alloc(op.Size, align)
		if err != nil {
			return err
		}
		if op.Name != "" {
			r.blocks[op.Name] = b
		}
		return nil

	case OpReset:
		r.m.reset()
		return nil

	case OpResize:
		am := r.m.(*arenaMachine)
		b, ok := r.blocks[op.Name]
		if !ok {
			return errors.Wrapf(ErrUnknownBlock, "%q", op.Name)
		}
		nb, err := am.a.Resize(b, op.Size, align)
		if err != nil {
			return err
		}
		r.blocks[op.Name] = nb
		return nil

	case OpScratchBegin:
		am := r.m.(*arenaMachine)
		am.scratch = append(am.scratch, am.a.ScratchBegin())
		return nil

	case OpScratchEnd:
		am := r.m.(*arenaMachine)
		if len(am.scratch) == 0 {
			return ErrNoScratch
		}
		am.scratch[len(am.scratch)-1].End()
		am.scratch = am.scratch[:len(am.scratch)-1]
		return nil

	case OpPop:
		return r.m.(*stackMachine).s.Pop()

	case OpFree:
		b, ok := r.blocks[op.Name]
		if !ok {
			return errors.Wrapf(ErrUnknownBlock, "%q", op.Name)
		}
		return r.m.(*stackMachine).s.FreeAt(b)
	}
	return errors.AssertionFailedf("script: unhandled op %q", op.Op)
}

type arenaMachine struct {
	a       *arena.Arena
	scratch []arena.Scratch
}

func (m *arenaMachine) alloc(size int, align uintptr) ([]byte, error) {
	return m.a.AllocBytesAligned(size, align)
}

func (m *arenaMachine) offsets() (int, int) { return m.a.Offset(), m.a.PreviousOffset() }

func (m *arenaMachine) reset() {
	m.a.Reset()
	m.scratch = m.scratch[:0]
}

func (m *arenaMachine) release() error { return m.a.Release() }

func (m *arenaMachine) summary() Summary {
	met := m.a.Metrics()
	return Summary{
		Capacity:    met.Capacity,
		SizeInUse:   met.SizeInUse,
		Remaining:   met.Remaining,
		Peak:        met.Peak,
		Utilization: met.Utilization,
	}
}

type stackMachine struct {
	s *stack.Stack
}

func (m *stackMachine) alloc(size int, align uintptr) ([]byte, error) {
	return m.s.AllocBytesAligned(size, align)
}

func (m *stackMachine) offsets() (int, int) { return m.s.Offset(), m.s.PreviousOffset() }

func (m *stackMachine) reset() { m.s.Reset() }

func (m *stackMachine) release() error { return m.s.Release() }

func (m *stackMachine) summary() Summary {
	met := m.s.Metrics()
	return Summary{
		Capacity:    met.Capacity,
		SizeInUse:   met.SizeInUse,
		Remaining:   met.Remaining,
		Peak:        met.Peak,
		Depth:       met.Depth,
		Utilization: met.Utilization,
	}
}
