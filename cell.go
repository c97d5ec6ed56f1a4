package syncell

import (
	"context"

	"github.com/unkn0wn-root/syncell/epoch"
	"github.com/unkn0wn-root/syncell/internal/wire"
	"github.com/unkn0wn-root/syncell/store"
)

// SyncCell is a write-back cell for one storage slot.
//
// # Guarantees
//
//   - Avoid Reads: at most one backend read per synchronization epoch,
//     triggered by the first Get/GetMut and reused by all later calls.
//   - Avoid Writes: Set/Clear/GetMut only mark the cache dirty; Flush issues
//     at most one backend write per dirty period.
//
// A SyncCell must only be used from one execution context at a time. Dropping
// a dirty cell without calling Flush loses the pending write; the runtime is
// responsible for flushing every live cell at its end-of-call boundary.
type SyncCell[V any] struct {
	slot  typedSlot[V]
	cache cache[V]
	clock *epoch.Clock
	seen  uint64
	log   Logger
}

// Key returns the address of the underlying slot.
func (c *SyncCell[V]) Key() store.Key { return c.slot.key }

// Get returns a pointer to the value of the cell, nil if the slot is empty.
// The first call since synchronization performs one backend read; subsequent
// calls are served from the cache. The returned pointer stays valid and
// observes later Set/MutateWith updates until the cache is discarded at an
// epoch boundary.
func (c *SyncCell[V]) Get(ctx context.Context) (*V, error) {
	if err := c.ensureSynced(ctx); err != nil {
		return nil, err
	}
	return c.cache.get(), nil
}

// GetMut returns a mutable pointer to the value of the cell, nil if the slot
// is empty. The cache is marked dirty regardless of whether the caller
// mutates through the pointer, and regardless of whether a value was present
// at all, so the next Flush writes back.
func (c *SyncCell[V]) GetMut(ctx context.Context) (*V, error) {
	if err := c.ensureSynced(ctx); err != nil {
		return nil, err
	}
	return c.cache.getMut(), nil
}

// Set replaces the value of the cell. No backend I/O happens; any number of
// Sets collapse into the single write issued by the next Flush.
func (c *SyncCell[V]) Set(val V) {
	c.epochCheck()
	c.cache.update(val, true)
	c.cache.markDirty()
}

// Clear removes the value from the cell. Like Set this is cache-only; the
// next Flush erases the slot.
func (c *SyncCell[V]) Clear() {
	c.epochCheck()
	var zero V
	c.cache.update(zero, false)
	c.cache.markDirty()
}

// MutateWith applies f to the value of the cell and returns a pointer to the
// result. If the cell is empty f is not invoked and nil is returned - but
// the cache is still dirty from the mutable access, so a following Flush
// issues one erase write. Billing layers depend on that accounting; it is
// deliberate.
func (c *SyncCell[V]) MutateWith(ctx context.Context, f func(*V)) (*V, error) {
	val, err := c.GetMut(ctx)
	if err != nil || val == nil {
		return nil, err
	}
	f(val)
	return val, nil
}

// Flush writes the cached value back to the slot if and only if the cache is
// dirty: one store when a value is present, one erase when not. Flushing a
// clean cell is a no-op, so calling Flush twice in a row performs the backend
// write only on the first call.
func (c *SyncCell[V]) Flush(ctx context.Context) error {
	if !c.cache.isDirty() {
		return nil
	}
	if val := c.cache.get(); val != nil {
		if err := c.slot.store(ctx, *val); err != nil {
			return &FlushError{Key: c.slot.key, Err: err}
		}
	} else {
		if err := c.slot.clear(ctx); err != nil {
			return &FlushError{Key: c.slot.key, Err: err}
		}
	}
	c.cache.markClean()
	c.log.Debug("flushed cell", Fields{"key": c.slot.key.String()})
	return nil
}

// MarshalBinary encodes the cell's identity - the slot address, never the
// cached value - for embedding in a larger persisted structure. Reconstruct
// with Decode.
func (c *SyncCell[V]) MarshalBinary() ([]byte, error) {
	return wire.EncodeKey(c.slot.key[:]), nil
}

// ensureSynced makes the cache answer reads: it expires stale epochs, then
// performs the one backend load if the cache is desynced. A load is not a
// logical write, so the cache is clean afterwards.
func (c *SyncCell[V]) ensureSynced(ctx context.Context) error {
	c.epochCheck()
	if c.cache.isSynced() {
		return nil
	}
	val, ok, err := c.slot.load(ctx)
	if err != nil {
		return err
	}
	c.cache.update(val, ok)
	return nil
}

// epochCheck drops a clean cache when the shared clock has advanced past the
// epoch this cell last synced in. A dirty cache is kept: the pending write
// must survive until Flush, even if the runtime advanced the clock early.
func (c *SyncCell[V]) epochCheck() {
	if c.clock == nil {
		return
	}
	now := c.clock.Current()
	if now == c.seen {
		return
	}
	if c.cache.isDirty() {
		c.log.Warn("epoch advanced over dirty cell; keeping pending write", Fields{
			"key":  c.slot.key.String(),
			"seen": c.seen,
			"now":  now,
		})
	} else {
		c.cache.drop()
	}
	c.seen = now
}
