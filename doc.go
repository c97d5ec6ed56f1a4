// Package syncell implements a write-back, lazily-synchronized cell in front
// of a single addressable storage slot. It is built for execution
// environments (contract runtimes, storage simulators) where every read and
// write against the underlying store is accounted and must be minimized:
// no matter how many logical Get/Set calls happen in between, a cell issues
// at most one backend read per synchronization and at most one backend write
// per Flush.
//
// Components:
//   - store.Backend: byte store keyed by 32-byte slot addresses
//     (memory, Redis, BigCache, Ristretto adapters under store/).
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//   - alloc.Allocator: hands out fresh, non-aliasing slot addresses.
//   - epoch.Clock: optional synchronization-epoch counter shared with the
//     runtime; lets cached state expire across call boundaries.
//   - Hooks / Meter: per-transaction callbacks for storage billing.
//
// Write-back pattern:
//
//	cell, _ := syncell.NewUsingAlloc[User](a, syncell.Options[User]{
//		Backend: be,
//		Codec:   codec.JSON[User]{},
//	})
//	cell.Set(u)                  // cached only, marked dirty
//	v, _ := cell.Get(ctx)        // served from cache, no backend read
//	_ = cell.Flush(ctx)          // exactly one backend write
//
// Encoding a cell persists only its slot address; a decoded cell starts with
// an empty cache and loads lazily on first read.
package syncell
