package arena

import "github.com/pavanmanishd/linalloc/internal/check"

// Scratch is a checkpoint of an arena's offsets. Ending it discards every
// allocation made on the arena since the checkpoint was taken; the bytes
// themselves are not copied or cleared.
//
// Checkpoints nest: ending an outer checkpoint also discards whatever inner
// checkpoints covered. The arena must not be Reset or Released while a
// checkpoint is expected to stay meaningful.
type Scratch struct {
	arena          *Arena
	offset         int
	previousOffset int
}

// ScratchBegin captures the arena's current offsets.
func (a *Arena) ScratchBegin() Scratch {
	a.panicIfReleased()
	return Scratch{arena: a, offset: a.offset, previousOffset: a.previousOffset}
}

// Begin captures the parent arena's current offsets, not the ones saved in s.
func (s Scratch) Begin() Scratch {
	return s.parent().ScratchBegin()
}

// End restores the parent arena to the checkpoint.
func (s Scratch) End() {
	a := s.parent()
	a.panicIfReleased()
	a.offset = s.offset
	a.previousOffset = s.previousOffset
}

// Arena returns the arena the checkpoint belongs to.
func (s Scratch) Arena() *Arena {
	return s.parent()
}

// Offset returns the saved free-space offset.
func (s Scratch) Offset() int { return s.offset }

// PreviousOffset returns the saved offset of the most recent block.
func (s Scratch) PreviousOffset() int { return s.previousOffset }

func (s Scratch) parent() *Arena {
	check.Precondition(s.arena != nil, "arena: zero Scratch has no arena")
	return s.arena
}
