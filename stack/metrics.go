package stack

// SizeInUse returns the number of bytes between the start of the buffer and
// the free offset, including padding and headers.
func (s *Stack) SizeInUse() int {
	return s.offset
}

// Capacity returns the size of the stack's buffer in bytes.
func (s *Stack) Capacity() int {
	return len(s.mem)
}

// Remaining returns the number of bytes after the free offset.
func (s *Stack) Remaining() int {
	return len(s.mem) - s.offset
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
func (s *Stack) Utilization() float64 {
	if len(s.mem) == 0 {
		return 0
	}
	return float64(s.offset) / float64(len(s.mem))
}

// Peak returns the highest free offset reached since the stack was created.
func (s *Stack) Peak() int {
	return s.peak
}

// Metrics returns a snapshot of stack statistics.
func (s *Stack) Metrics() StackMetrics {
	m := StackMetrics{
		SizeInUse:      s.SizeInUse(),
		PreviousOffset: s.previousOffset,
		Capacity:       s.Capacity(),
		Remaining:      s.Remaining(),
		Peak:           s.Peak(),
		Utilization:    s.Utilization(),
		Owned:          s.Owned(),
	}
	if !s.released {
		m.Depth = s.Depth()
	}
	return m
}

// StackMetrics contains statistical information about a stack.
type StackMetrics struct {
	SizeInUse      int     // Free offset, in bytes
	PreviousOffset int     // Offset of the top block
	Capacity       int     // Buffer size in bytes
	Remaining      int     // Bytes after the free offset
	Peak           int     // High-water mark of SizeInUse
	Depth          int     // Live blocks
	Utilization    float64 // Ratio of used to total capacity (0.0-1.0)
	Owned          bool    // Whether the buffer is returned to a provider on Release
}
