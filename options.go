package syncell

import (
	"fmt"

	"github.com/unkn0wn-root/syncell/alloc"
	"github.com/unkn0wn-root/syncell/codec"
	"github.com/unkn0wn-root/syncell/epoch"
	"github.com/unkn0wn-root/syncell/internal/wire"
	"github.com/unkn0wn-root/syncell/store"
)

// Options tune the behavior of a SyncCell.
// Only Backend and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Backend store.Backend
	Codec   codec.Codec[V]

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // per-transaction callbacks for billing; nil => NopHooks

	// Epoch, when set, bounds how long cached state is trusted: the cell
	// re-syncs (one fresh backend read) after the runtime advances the
	// clock. When nil the cache lives as long as the cell, which is the
	// right model for a long-lived instance reused across calls.
	Epoch *epoch.Clock
}

func (o Options[V]) validate() error {
	if o.Backend == nil {
		return fmt.Errorf("syncell: backend is required")
	}
	if o.Codec == nil {
		return fmt.Errorf("syncell: codec is required")
	}
	return nil
}

func (o Options[V]) build(key store.Key) *SyncCell[V] {
	var seen uint64
	if o.Epoch != nil {
		seen = o.Epoch.Current()
	}
	return &SyncCell[V]{
		slot: typedSlot[V]{
			backend: o.Backend,
			key:     key,
			codec:   o.Codec,
			hooks:   coalesce[Hooks](o.Hooks, NopHooks{}),
		},
		clock: o.Epoch,
		seen:  seen,
		log:   coalesce[Logger](o.Logger, NopLogger{}),
	}
}

// New constructs a cell anchored at the given slot address with an empty
// cache. Nothing is loaded eagerly.
func New[V any](key store.Key, opts Options[V]) (*SyncCell[V], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts.build(key), nil
}

// NewUsingAlloc obtains a fresh slot address from the allocator and
// constructs a cell there.
//
// Precondition (unchecked): the allocator must hand out addresses that do
// not alias any other live cell's slot, including slots owned by other
// allocators. Two cells over one slot silently overwrite each other's state.
func NewUsingAlloc[V any](a alloc.Allocator, opts Options[V]) (*SyncCell[V], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("syncell: allocator is required")
	}
	return opts.build(a.Allocate()), nil
}

// Decode reconstructs a cell from the identity bytes produced by
// MarshalBinary. The cache starts empty; decoding never implies a load.
func Decode[V any](data []byte, opts Options[V]) (*SyncCell[V], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	raw, err := wire.DecodeKey(data)
	if err != nil {
		return nil, err
	}
	key, _ := store.KeyFromBytes(raw)
	return opts.build(key), nil
}
