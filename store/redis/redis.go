// Package redis adapts a go-redis client to store.Backend. Redis is the
// natural choice when slot state must survive process restarts or be shared
// between a runtime and external tooling.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/syncell/store"
)

var ErrNilClient = errors.New("redis backend: nil client")

type Backend struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var _ store.Backend = (*Backend)(nil)

type Config struct {
	Client goredis.UniversalClient
	// Prefix namespaces slot keys inside a shared Redis keyspace,
	// e.g. "slots:". Optional.
	Prefix string
	// CloseClient should be true only if this backend exclusively owns the client.
	CloseClient bool
}

func New(cfg Config) (*Backend, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Backend{rdb: cfg.Client, prefix: cfg.Prefix, closeClient: cfg.CloseClient}, nil
}

func (b *Backend) Get(ctx context.Context, key store.Key) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, b.prefix+key.String()).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return v, true, nil
}

func (b *Backend) Set(ctx context.Context, key store.Key, value []byte) error {
	// Slot state is persistent; no expiry.
	return b.rdb.Set(ctx, b.prefix+key.String(), value, 0).Err()
}

func (b *Backend) Del(ctx context.Context, key store.Key) error {
	return b.rdb.Del(ctx, b.prefix+key.String()).Err()
}

// Close releases the underlying redis client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (b *Backend) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
