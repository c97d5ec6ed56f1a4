// Package memory provides an in-process store.Backend with storage
// transaction accounting, intended for tests and contract-simulation
// harnesses that need to assert how many reads and writes a code path
// actually performed.
package memory

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/syncell/store"
)

// Backend is a map-backed byte store. Every Get counts as one read
// transaction; every Set and Del counts as one write transaction,
// matching how metered storage bills slot access.
type Backend struct {
	mu     sync.RWMutex
	m      map[store.Key][]byte
	reads  uint64
	writes uint64
}

var _ store.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{m: make(map[store.Key][]byte)}
}

func (b *Backend) Get(_ context.Context, key store.Key) ([]byte, bool, error) {
	b.mu.Lock()
	b.reads++
	v, ok := b.m[key]
	b.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (b *Backend) Set(_ context.Context, key store.Key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	b.mu.Lock()
	b.writes++
	b.m[key] = stored
	b.mu.Unlock()
	return nil
}

func (b *Backend) Del(_ context.Context, key store.Key) error {
	b.mu.Lock()
	b.writes++
	delete(b.m, key)
	b.mu.Unlock()
	return nil
}

func (b *Backend) Close(context.Context) error { return nil }

// TotalReads returns the number of read transactions performed so far.
func (b *Backend) TotalReads() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.reads
}

// TotalWrites returns the number of write transactions (Set and Del)
// performed so far.
func (b *Backend) TotalWrites() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// ResetCounters zeroes the read/write accounting without touching stored data.
func (b *Backend) ResetCounters() {
	b.mu.Lock()
	b.reads, b.writes = 0, 0
	b.mu.Unlock()
}

// Len reports the number of live slots. Test helper.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.m)
}
