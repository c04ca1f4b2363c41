package session

import "sync/atomic"

// Clock hands out the seq stamped on each journal row.
type Clock interface {
	Next() int64
}

// LogicalClock is a monotonic counter. Journal ordering uses its values,
// never wall time.
type LogicalClock struct {
	seq atomic.Int64
}

// NewLogicalClock creates a clock starting at 0.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// NewLogicalClockAt creates a clock resuming after start.
// Used to continue a journal that already has rows.
func NewLogicalClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}
