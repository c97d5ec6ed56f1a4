package syncell

import "github.com/unkn0wn-root/syncell/store"

// Hooks receive a callback per accounted storage transaction.
// Implementations MUST be cheap and non-blocking - cells call them inline
// on the load and flush paths. Billing/metering layers implement Hooks to
// charge for slot access; the cell's state machine guarantees load-once and
// write-once per dirty period, so the callbacks are what there is to bill.
type Hooks interface {
	// SlotLoaded fires after the one read a synchronization performs.
	// hit is false when the slot was empty.
	SlotLoaded(key store.Key, hit bool)

	// SlotStored fires after a flush wrote a value to the slot.
	SlotStored(key store.Key)

	// SlotCleared fires after a flush erased the slot.
	SlotCleared(key store.Key)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SlotLoaded(store.Key, bool) {}
func (NopHooks) SlotStored(store.Key)       {}
func (NopHooks) SlotCleared(store.Key)      {}

// Meter is a Hooks implementation that totals read and write transactions,
// the way metered execution environments account storage. Not safe for
// concurrent use; give each execution context its own Meter.
type Meter struct {
	reads  uint64
	writes uint64
}

var _ Hooks = (*Meter)(nil)

func (m *Meter) SlotLoaded(store.Key, bool) { m.reads++ }
func (m *Meter) SlotStored(store.Key)       { m.writes++ }
func (m *Meter) SlotCleared(store.Key)      { m.writes++ }

// TotalReads returns the number of accounted reads so far.
func (m *Meter) TotalReads() uint64 { return m.reads }

// TotalWrites returns the number of accounted writes (stores and erases) so far.
func (m *Meter) TotalWrites() uint64 { return m.writes }

// Reset zeroes both counters, typically at a call boundary.
func (m *Meter) Reset() { m.reads, m.writes = 0, 0 }
