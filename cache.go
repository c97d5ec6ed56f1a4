package syncell

// entryState tags the synchronization state of a cache entry.
type entryState uint8

const (
	// stateDesync: nothing has been loaded from the slot yet.
	stateDesync entryState = iota
	// stateSync: a value (possibly absent) is cached.
	stateSync
)

// valueBox holds the cached optional value at a stable heap address.
// Pointers handed out by get/getMut point into the box and stay valid while
// later updates overwrite the contents in place.
type valueBox[V any] struct {
	present bool
	val     V
}

// syncCacheEntry is the cache record of a synced entry: the optional value
// plus the dirty flag. dirty == true iff the cached value may differ from
// what is currently persisted in the slot.
type syncCacheEntry[V any] struct {
	dirty bool
	box   *valueBox[V]
}

func newSyncCacheEntry[V any](val V, present bool) syncCacheEntry[V] {
	return syncCacheEntry[V]{
		dirty: false,
		box:   &valueBox[V]{present: present, val: val},
	}
}

// update replaces the cached value in place, keeping the box address stable.
func (e *syncCacheEntry[V]) update(val V, present bool) {
	e.box.val = val
	e.box.present = present
}

func (e *syncCacheEntry[V]) get() *V {
	if !e.box.present {
		return nil
	}
	return &e.box.val
}

// getMut marks the entry dirty before looking at the value: the caller may
// mutate through the returned pointer, so the entry is pessimistically
// treated as modified even when the value turns out to be absent.
func (e *syncCacheEntry[V]) getMut() *V {
	e.dirty = true
	return e.get()
}

// cacheEntry is the Desync/Sync state machine.
//
// Transitions:
//
//	Desync --update(v)--> Sync{dirty:false, value:v}
//	Sync   --update(v)--> Sync{dirty:false, value:v}
//
// update always clears dirty: it serves both the load path and the overwrite
// path, and the caller re-marks dirty when the overwrite is a logical write.
// markDirty/markClean are no-ops on Desync. get/getMut on Desync panic; the
// public SyncCell API forces a sync before every read, so reaching that
// panic means a bug in this package.
type cacheEntry[V any] struct {
	state entryState
	entry syncCacheEntry[V]
}

func (e *cacheEntry[V]) update(val V, present bool) {
	switch e.state {
	case stateDesync:
		e.entry = newSyncCacheEntry(val, present)
		e.state = stateSync
	case stateSync:
		e.entry.update(val, present)
		e.entry.dirty = false
	}
}

func (e *cacheEntry[V]) isSynced() bool {
	return e.state == stateSync
}

// isDirty reports whether the entry must be written back on flush.
// A Desync entry is never dirty.
func (e *cacheEntry[V]) isDirty() bool {
	return e.state == stateSync && e.entry.dirty
}

func (e *cacheEntry[V]) markDirty() {
	if e.state == stateSync {
		e.entry.dirty = true
	}
}

func (e *cacheEntry[V]) markClean() {
	if e.state == stateSync {
		e.entry.dirty = false
	}
}

func (e *cacheEntry[V]) get() *V {
	if e.state == stateDesync {
		panic("syncell: value read from desynchronized cache")
	}
	return e.entry.get()
}

func (e *cacheEntry[V]) getMut() *V {
	if e.state == stateDesync {
		panic("syncell: mutable value read from desynchronized cache")
	}
	return e.entry.getMut()
}

// cache owns one cacheEntry and is the only surface the cell touches the
// state machine through. Get on the cell presents a read contract to its
// callers yet may trigger a lazy load; confining every entry access to this
// wrapper keeps that read-triggered mutation in one auditable place.
type cache[V any] struct {
	entry cacheEntry[V]
}

// update replaces the cached value.
//
// # Note
//
//   - The cache will be in sync after this operation.
//   - The cache will not be dirty after this operation.
func (c *cache[V]) update(val V, present bool) { c.entry.update(val, present) }

func (c *cache[V]) isSynced() bool { return c.entry.isSynced() }
func (c *cache[V]) isDirty() bool  { return c.entry.isDirty() }
func (c *cache[V]) markDirty()     { c.entry.markDirty() }
func (c *cache[V]) markClean()     { c.entry.markClean() }

// get returns a pointer to the cached value, nil if the cached value is
// absent. Panics if the cache is desynced.
func (c *cache[V]) get() *V { return c.entry.get() }

// getMut is get plus the pessimistic dirty mark.
func (c *cache[V]) getMut() *V { return c.entry.getMut() }

// drop throws the cached state away, returning to Desync. Used when a new
// synchronization epoch begins and the cache holds nothing worth keeping.
func (c *cache[V]) drop() {
	c.entry = cacheEntry[V]{}
}
