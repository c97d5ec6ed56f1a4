// Package alloc hands out slot addresses for freshly constructed cells.
//
// Allocators are an unchecked trust boundary: nothing verifies that two
// allocators (or an allocator and a hand-picked key) never produce the same
// address. Aliased slots are undefined behavior at the cell layer, so wire
// exactly one allocation scheme per keyspace.
package alloc

import "github.com/unkn0wn-root/syncell/store"

// Allocator returns a fresh slot address on every call.
type Allocator interface {
	Allocate() store.Key
}

// Bump allocates consecutive addresses upward from a base key. It never
// frees; contract storage layouts are append-only within one keyspace.
// Not safe for concurrent use.
type Bump struct {
	base store.Key
	next uint64
}

var _ Allocator = (*Bump)(nil)

// NewBump returns a bump allocator starting at base. The caller guarantees
// the region above base is not claimed by anything else.
func NewBump(base store.Key) *Bump {
	return &Bump{base: base}
}

func (b *Bump) Allocate() store.Key {
	k := b.base.Add(b.next)
	b.next++
	return k
}

// Allocated reports how many addresses have been handed out.
func (b *Bump) Allocated() uint64 { return b.next }
