// Package epoch provides the synchronization-epoch counter shared between a
// runtime and the cells it owns. Whether cached slot state may be reused
// across separate executions is a property of the surrounding runtime, not
// of the cell, so it is expressed here as an explicit, shared clock instead
// of being hard-coded either way: a runtime that reconstructs state per call
// advances the clock at each call boundary; a long-lived runtime that trusts
// its cache simply never advances it (or gives its cells no clock at all).
package epoch

import "sync"

// Clock is a monotonically increasing epoch counter. Safe for concurrent
// use; one clock is typically shared by many cells.
type Clock struct {
	mu  sync.Mutex
	now uint64
}

func NewClock() *Clock { return &Clock{} }

// Current returns the current epoch.
func (c *Clock) Current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance begins a new epoch and returns it. Call it only after every live
// cell has been flushed; cells never discard dirty state on an epoch change,
// so advancing early just delays the reload.
func (c *Clock) Advance() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now++
	return c.now
}
