// Package bigcache adapts allegro/bigcache to store.Backend. BigCache is
// volatile, so this backend is meant for simulation and throwaway runtime
// state, not durable slot storage.
package bigcache

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/syncell/store"
)

type Backend struct {
	c *bc.BigCache
}

var _ store.Backend = (*Backend)(nil)

type Config struct {
	// LifeWindow bounds how long a slot survives without rewrite.
	// Choose it comfortably above the longest expected execution.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Backend, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key store.Key) ([]byte, bool, error) {
	v, err := b.c.Get(key.String())
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return v, err == nil, err
}

func (b *Backend) Set(_ context.Context, key store.Key, value []byte) error {
	return b.c.Set(key.String(), value)
}

func (b *Backend) Del(_ context.Context, key store.Key) error {
	if err := b.c.Delete(key.String()); err != nil && err != bc.ErrEntryNotFound {
		return err
	}
	return nil
}

func (b *Backend) Close(_ context.Context) error {
	return b.c.Close()
}
