package history

import "sync/atomic"

// Clock numbers history events in the order an observer sees them. The
// first call to Next returns 1. The zero Clock is ready to use.
type Clock struct {
	seq atomic.Int64
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
