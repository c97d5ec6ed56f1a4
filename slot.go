package syncell

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/syncell/codec"
	"github.com/unkn0wn-root/syncell/store"
)

// typedSlot binds one slot address to a backend and a value codec. Every
// method is exactly one accounted storage transaction and reports it to the
// hooks, which is what billing/metering layers key off.
type typedSlot[V any] struct {
	backend store.Backend
	key     store.Key
	codec   codec.Codec[V]
	hooks   Hooks
}

// load reads the slot. Returns (zero, false, nil) when the slot is empty.
func (s *typedSlot[V]) load(ctx context.Context) (V, bool, error) {
	var zero V
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return zero, false, err
	}
	s.hooks.SlotLoaded(s.key, ok)
	if !ok {
		return zero, false, nil
	}
	v, err := s.codec.Decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("syncell: decode slot %s: %w", s.key, err)
	}
	return v, true, nil
}

func (s *typedSlot[V]) store(ctx context.Context, v V) error {
	raw, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("syncell: encode slot %s: %w", s.key, err)
	}
	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		return err
	}
	s.hooks.SlotStored(s.key)
	return nil
}

func (s *typedSlot[V]) clear(ctx context.Context) error {
	if err := s.backend.Del(ctx, s.key); err != nil {
		return err
	}
	s.hooks.SlotCleared(s.key)
	return nil
}
