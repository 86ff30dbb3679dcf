package arena

// SizeInUse returns the number of bytes between the start of the buffer and
// the free offset, including alignment padding.
func (a *Arena) SizeInUse() int {
	return a.offset
}

// Capacity returns the size of the arena's buffer in bytes.
func (a *Arena) Capacity() int {
	return len(a.mem)
}

// Remaining returns the number of bytes after the free offset.
func (a *Arena) Remaining() int {
	return len(a.mem) - a.offset
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	if len(a.mem) == 0 {
		return 0
	}
	return float64(a.offset) / float64(len(a.mem))
}

// Peak returns the highest free offset reached since the arena was created.
// Reset does not lower it.
func (a *Arena) Peak() int {
	return a.peak
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:      a.SizeInUse(),
		PreviousOffset: a.previousOffset,
		Capacity:       a.Capacity(),
		Remaining:      a.Remaining(),
		Peak:           a.Peak(),
		Utilization:    a.Utilization(),
		Owned:          a.Owned(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse      int     // Free offset, in bytes
	PreviousOffset int     // Offset of the most recent block
	Capacity       int     // Buffer size in bytes
	Remaining      int     // Bytes after the free offset
	Peak           int     // High-water mark of SizeInUse
	Utilization    float64 // Ratio of used to total capacity (0.0-1.0)
	Owned          bool    // Whether the buffer is returned to a provider on Release
}
