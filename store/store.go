// Package store defines the storage abstraction syncell cells write through.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set.
//
// A Backend is shared infrastructure and must be safe for concurrent use;
// the cells sitting on top of it are single-context by contract.
package store

import (
	"context"
	"encoding/binary"
	"encoding/hex"
)

// KeySize is the width of a slot address in bytes.
const KeySize = 32

// Key is the opaque address of one storage slot.
type Key [KeySize]byte

// KeyFromBytes copies b into a Key. b must be exactly KeySize bytes.
func KeyFromBytes(b []byte) (Key, bool) {
	var k Key
	if len(b) != KeySize {
		return k, false
	}
	copy(k[:], b)
	return k, true
}

// Add returns the key at the given forward offset, treating the key as a
// big-endian 256-bit integer. Overflow wraps around.
func (k Key) Add(offset uint64) Key {
	out := k
	carry := offset
	for i := KeySize; i >= 8 && carry != 0; i -= 8 {
		word := binary.BigEndian.Uint64(out[i-8 : i])
		sum := word + carry
		binary.BigEndian.PutUint64(out[i-8:i], sum)
		if sum >= word {
			carry = 0
		} else {
			carry = 1
		}
	}
	return out
}

// String returns the hex form of the key. Also used as the storage key by
// backends that require string keys.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Backend is a minimal byte store keyed by slot addresses.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key Key) ([]byte, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key Key) error

	// Close releases resources.
	Close(ctx context.Context) error
}
