// Package wire frames the persisted identity of a cell: the slot address,
// never the cached value. The frame is versioned so embedding structures can
// evolve without guessing at raw key bytes.
package wire

import (
	"bytes"
	"errors"
)

const (
	version byte = 1
	keyLen       = 32

	frameLen = 4 + 1 + keyLen
)

var (
	ErrCorrupt = errors.New("syncell: corrupt cell identity")
	magic4     = [...]byte{'S', 'Y', 'C', 'L'}
)

// EncodeKey frames a slot address: magic(4) | ver(1) | key(32).
// key must be exactly 32 bytes.
func EncodeKey(key []byte) []byte {
	if len(key) != keyLen {
		panic("syncell: invalid key length in identity frame")
	}
	out := make([]byte, 0, frameLen)
	out = append(out, magic4[:]...)
	out = append(out, version)
	out = append(out, key...)
	return out
}

// DecodeKey strictly parses an identity frame, rejecting short input, bad
// magic or version, and trailing bytes.
func DecodeKey(b []byte) ([]byte, error) {
	if len(b) != frameLen {
		return nil, ErrCorrupt
	}
	if !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return nil, ErrCorrupt
	}
	key := make([]byte, keyLen)
	copy(key, b[5:])
	return key, nil
}
