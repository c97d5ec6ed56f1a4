// Package ristretto adapts dgraph-io/ristretto to store.Backend. Like the
// bigcache backend it is volatile and admission-controlled, so it suits
// simulation workloads where losing a slot merely forces a reload upstream.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/syncell/store"
)

// ErrRejected is returned when ristretto refuses a Set under memory
// pressure. A slot write must not be dropped silently, so rejection is
// surfaced to the caller instead of being reported as success.
var ErrRejected = errors.New("ristretto backend: set rejected")

type Backend struct {
	c *rc.Cache
}

var _ store.Backend = (*Backend)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Backend, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto backend: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key store.Key) ([]byte, bool, error) {
	v, ok := b.c.Get(key.String())
	if !ok {
		return nil, false, nil
	}
	raw, _ := v.([]byte)
	if raw == nil {
		// self-heal: drop unexpected entry shape
		b.c.Del(key.String())
		return nil, false, nil
	}
	return raw, true, nil
}

func (b *Backend) Set(_ context.Context, key store.Key, value []byte) error {
	if !b.c.Set(key.String(), value, int64(len(value))) {
		return ErrRejected
	}
	// Sets are buffered; wait so a subsequent Get observes the write.
	b.c.Wait()
	return nil
}

func (b *Backend) Del(_ context.Context, key store.Key) error {
	b.c.Del(key.String())
	return nil
}

func (b *Backend) Close(_ context.Context) error {
	b.c.Wait()
	b.c.Close()
	return nil
}

// Metrics exposes ristretto metrics to the application (not part of store.Backend).
func (b *Backend) Metrics() *rc.Metrics { return b.c.Metrics }
