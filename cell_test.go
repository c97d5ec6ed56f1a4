package syncell

import (
	"context"
	"errors"
	"testing"

	"github.com/unkn0wn-root/syncell/alloc"
	"github.com/unkn0wn-root/syncell/codec"
	"github.com/unkn0wn-root/syncell/epoch"
	"github.com/unkn0wn-root/syncell/store"
	"github.com/unkn0wn-root/syncell/store/memory"
)

func dummyCell(t *testing.T, be store.Backend, optsOpt func(*Options[int])) *SyncCell[int] {
	t.Helper()
	opts := Options[int]{
		Backend: be,
		Codec:   codec.JSON[int]{},
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cell, err := NewUsingAlloc[int](alloc.NewBump(store.Key{}), opts)
	if err != nil {
		t.Fatalf("NewUsingAlloc: %v", err)
	}
	return cell
}

// ==============================
// Public contract tests
// ==============================

// TestSimple walks the reference scenario: empty, set, mutate, clear.
func TestSimple(t *testing.T) {
	ctx := context.Background()
	cell := dummyCell(t, memory.New(), nil)

	if got, err := cell.Get(ctx); err != nil || got != nil {
		t.Fatalf("fresh Get expected empty, got=%v err=%v", got, err)
	}

	cell.Set(5)
	if got, err := cell.Get(ctx); err != nil || got == nil || *got != 5 {
		t.Fatalf("Get after Set(5): got=%v err=%v", got, err)
	}

	res, err := cell.MutateWith(ctx, func(v *int) { *v += 10 })
	if err != nil || res == nil || *res != 15 {
		t.Fatalf("MutateWith: res=%v err=%v", res, err)
	}
	if got, _ := cell.Get(ctx); got == nil || *got != 15 {
		t.Fatalf("Get after mutate expected 15, got=%v", got)
	}

	cell.Clear()
	if got, err := cell.Get(ctx); err != nil || got != nil {
		t.Fatalf("Get after Clear expected empty, got=%v err=%v", got, err)
	}
}

// TestStablePointer: pointers returned by Get stay valid and observe later
// in-place updates of the cell.
func TestStablePointer(t *testing.T) {
	ctx := context.Background()
	cell := dummyCell(t, memory.New(), nil)

	cell.Set(1)
	p, err := cell.Get(ctx)
	if err != nil || p == nil {
		t.Fatalf("Get: p=%v err=%v", p, err)
	}

	cell.Set(2)
	if *p != 2 {
		t.Fatalf("pointer should observe in-place update, got %d", *p)
	}

	q, _ := cell.GetMut(ctx)
	if q != p {
		t.Fatalf("GetMut should return the same stable location")
	}
	*q = 7
	if got, _ := cell.Get(ctx); got == nil || *got != 7 {
		t.Fatalf("Get after pointer write expected 7, got=%v", got)
	}
}

// ==============================
// Read/write accounting tests
// ==============================

func TestCountRWGet(t *testing.T) {
	const n = 5
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	if be.TotalReads() != 0 || be.TotalWrites() != 0 {
		t.Fatalf("initial counters: reads=%d writes=%d", be.TotalReads(), be.TotalWrites())
	}

	// Repeated reads on the same cell: one backend read total.
	for i := 0; i < n; i++ {
		if _, err := cell.Get(ctx); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if be.TotalReads() != 1 || be.TotalWrites() != 0 {
			t.Fatalf("after Get #%d: reads=%d writes=%d", i+1, be.TotalReads(), be.TotalWrites())
		}
	}

	// Flushing a clean cell performs no write.
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if be.TotalReads() != 1 || be.TotalWrites() != 0 {
		t.Fatalf("after Flush: reads=%d writes=%d", be.TotalReads(), be.TotalWrites())
	}
}

func TestCountRWGetMut(t *testing.T) {
	const n = 5
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	for i := 0; i < n; i++ {
		if _, err := cell.GetMut(ctx); err != nil {
			t.Fatalf("GetMut: %v", err)
		}
		if be.TotalReads() != 1 || be.TotalWrites() != 0 {
			t.Fatalf("after GetMut #%d: reads=%d writes=%d", i+1, be.TotalReads(), be.TotalWrites())
		}
	}

	// GetMut marked the cache dirty, so the flush writes back once.
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if be.TotalReads() != 1 || be.TotalWrites() != 1 {
		t.Fatalf("after Flush: reads=%d writes=%d", be.TotalReads(), be.TotalWrites())
	}
}

func TestCountRWSet(t *testing.T) {
	const n = 5
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	for i := 0; i < n; i++ {
		cell.Set(42)
		if be.TotalReads() != 0 || be.TotalWrites() != 0 {
			t.Fatalf("after Set #%d: reads=%d writes=%d", i+1, be.TotalReads(), be.TotalWrites())
		}
	}

	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if be.TotalReads() != 0 || be.TotalWrites() != 1 {
		t.Fatalf("after Flush: reads=%d writes=%d", be.TotalReads(), be.TotalWrites())
	}
}

func TestCountRWClear(t *testing.T) {
	const n = 5
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	for i := 0; i < n; i++ {
		cell.Clear()
		if be.TotalReads() != 0 || be.TotalWrites() != 0 {
			t.Fatalf("after Clear #%d: reads=%d writes=%d", i+1, be.TotalReads(), be.TotalWrites())
		}
	}

	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if be.TotalReads() != 0 || be.TotalWrites() != 1 {
		t.Fatalf("after Flush: reads=%d writes=%d", be.TotalReads(), be.TotalWrites())
	}
}

func TestIdempotentFlush(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	cell.Set(9)
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if be.TotalWrites() != 1 {
		t.Fatalf("double flush should write once, writes=%d", be.TotalWrites())
	}
}

// MutateWith on an empty cell skips the closure but still dirties the cache;
// the following flush issues one erase even though no value was ever present.
func TestMutateWithAbsentStillDirties(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	invoked := false
	res, err := cell.MutateWith(ctx, func(*int) { invoked = true })
	if err != nil {
		t.Fatalf("MutateWith: %v", err)
	}
	if res != nil || invoked {
		t.Fatalf("MutateWith on empty cell: res=%v invoked=%v", res, invoked)
	}

	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if be.TotalReads() != 1 || be.TotalWrites() != 1 {
		t.Fatalf("expected 1 read + 1 erase, reads=%d writes=%d", be.TotalReads(), be.TotalWrites())
	}
}

// ==============================
// Persistence / identity tests
// ==============================

// Write-back round trip: a second cell anchored at the same slot sees the
// flushed value with exactly one read.
func TestWriteBackRoundTrip(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	cell.Set(1234)
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	be.ResetCounters()

	reopened, err := New[int](cell.Key(), Options[int]{Backend: be, Codec: codec.JSON[int]{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := reopened.Get(ctx)
	if err != nil || got == nil || *got != 1234 {
		t.Fatalf("reopened Get: got=%v err=%v", got, err)
	}
	if be.TotalReads() != 1 || be.TotalWrites() != 0 {
		t.Fatalf("reopen accounting: reads=%d writes=%d", be.TotalReads(), be.TotalWrites())
	}
}

func TestMarshalDecode(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	cell.Set(7)
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	ident, err := cell.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	be.ResetCounters()
	decoded, err := Decode[int](ident, Options[int]{Backend: be, Codec: codec.JSON[int]{}})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Key() != cell.Key() {
		t.Fatalf("decoded key mismatch: %s vs %s", decoded.Key(), cell.Key())
	}
	// Decoding never implies a load.
	if be.TotalReads() != 0 {
		t.Fatalf("Decode should not read, reads=%d", be.TotalReads())
	}
	if got, _ := decoded.Get(ctx); got == nil || *got != 7 {
		t.Fatalf("decoded Get expected 7, got=%v", got)
	}
}

func TestDecodeRejectsCorruptIdentity(t *testing.T) {
	be := memory.New()
	opts := Options[int]{Backend: be, Codec: codec.JSON[int]{}}

	if _, err := Decode[int]([]byte("garbage"), opts); err == nil {
		t.Fatalf("Decode should reject garbage identity bytes")
	}

	cell := dummyCell(t, be, nil)
	ident, _ := cell.MarshalBinary()
	ident = append(ident, 0xDE) // trailing byte
	if _, err := Decode[int](ident, opts); err == nil {
		t.Fatalf("Decode should reject trailing bytes")
	}
}

// ==============================
// Epoch tests
// ==============================

func TestEpochExpiresCleanCache(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	clock := epoch.NewClock()
	cell := dummyCell(t, be, func(o *Options[int]) { o.Epoch = clock })

	cell.Set(3)
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	be.ResetCounters()

	// Same epoch: served from cache.
	if _, err := cell.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if be.TotalReads() != 0 {
		t.Fatalf("expected cached read, reads=%d", be.TotalReads())
	}

	// New epoch: clean cache is dropped and reloaded once.
	clock.Advance()
	for i := 0; i < 3; i++ {
		got, err := cell.Get(ctx)
		if err != nil || got == nil || *got != 3 {
			t.Fatalf("Get after advance: got=%v err=%v", got, err)
		}
	}
	if be.TotalReads() != 1 {
		t.Fatalf("expected exactly one reload, reads=%d", be.TotalReads())
	}
}

func TestEpochKeepsDirtyCache(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	clock := epoch.NewClock()
	cell := dummyCell(t, be, func(o *Options[int]) { o.Epoch = clock })

	cell.Set(11)
	clock.Advance() // runtime advanced without flushing

	// Pending write survives; no reload happens.
	got, err := cell.Get(ctx)
	if err != nil || got == nil || *got != 11 {
		t.Fatalf("Get: got=%v err=%v", got, err)
	}
	if be.TotalReads() != 0 {
		t.Fatalf("dirty cache must not reload, reads=%d", be.TotalReads())
	}

	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if be.TotalWrites() != 1 {
		t.Fatalf("expected one write, writes=%d", be.TotalWrites())
	}
}

// ==============================
// Hooks / metering tests
// ==============================

func TestMeterAccounting(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	m := &Meter{}
	cell := dummyCell(t, be, func(o *Options[int]) { o.Hooks = m })

	if _, err := cell.Get(ctx); err != nil { // one read (miss)
		t.Fatalf("Get: %v", err)
	}
	cell.Set(1)
	if err := cell.Flush(ctx); err != nil { // one store
		t.Fatalf("Flush: %v", err)
	}
	cell.Clear()
	if err := cell.Flush(ctx); err != nil { // one erase
		t.Fatalf("Flush: %v", err)
	}

	if m.TotalReads() != 1 || m.TotalWrites() != 2 {
		t.Fatalf("meter: reads=%d writes=%d", m.TotalReads(), m.TotalWrites())
	}
	if m.TotalReads() != be.TotalReads() || m.TotalWrites() != be.TotalWrites() {
		t.Fatalf("meter and backend disagree: meter=%d/%d backend=%d/%d",
			m.TotalReads(), m.TotalWrites(), be.TotalReads(), be.TotalWrites())
	}

	m.Reset()
	if m.TotalReads() != 0 || m.TotalWrites() != 0 {
		t.Fatalf("Reset should zero counters")
	}
}

// ==============================
// Failure path tests
// ==============================

type failBackend struct {
	*memory.Backend
	setErr error
}

func (b *failBackend) Set(ctx context.Context, key store.Key, value []byte) error {
	if b.setErr != nil {
		return b.setErr
	}
	return b.Backend.Set(ctx, key, value)
}

func TestFlushErrorKeepsDirty(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("backend down")
	be := &failBackend{Backend: memory.New(), setErr: sentinel}
	cell := dummyCell(t, be, nil)

	cell.Set(5)
	err := cell.Flush(ctx)
	if err == nil {
		t.Fatalf("Flush should fail")
	}
	var fe *FlushError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FlushError, got %T: %v", err, err)
	}
	if fe.Key != cell.Key() {
		t.Fatalf("FlushError key mismatch")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("FlushError should unwrap to the backend error")
	}

	// The cache stayed dirty; a later flush retries and succeeds.
	be.setErr = nil
	if err := cell.Flush(ctx); err != nil {
		t.Fatalf("retry Flush: %v", err)
	}
	if got, _ := cell.Get(ctx); got == nil || *got != 5 {
		t.Fatalf("value lost across failed flush, got=%v", got)
	}
}

func TestGetPropagatesDecodeError(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	cell := dummyCell(t, be, nil)

	// Foreign writer corrupted the slot.
	if err := be.Set(ctx, cell.Key(), []byte("not json")); err != nil {
		t.Fatalf("inject: %v", err)
	}
	if _, err := cell.Get(ctx); err == nil {
		t.Fatalf("Get should surface the decode error")
	}
}

// ==============================
// Constructor validation tests
// ==============================

func TestOptionsValidation(t *testing.T) {
	be := memory.New()

	if _, err := New[int](store.Key{}, Options[int]{Codec: codec.JSON[int]{}}); err == nil {
		t.Fatalf("missing backend should error")
	}
	if _, err := New[int](store.Key{}, Options[int]{Backend: be}); err == nil {
		t.Fatalf("missing codec should error")
	}
	if _, err := NewUsingAlloc[int](nil, Options[int]{Backend: be, Codec: codec.JSON[int]{}}); err == nil {
		t.Fatalf("nil allocator should error")
	}
}

// ==============================
// Group flush tests
// ==============================

func TestGroupFlushesAllMembers(t *testing.T) {
	ctx := context.Background()
	be := memory.New()
	a := alloc.NewBump(store.Key{})
	opts := Options[int]{Backend: be, Codec: codec.JSON[int]{}}

	var g Group
	for i := 0; i < 3; i++ {
		cell, err := NewUsingAlloc[int](a, opts)
		if err != nil {
			t.Fatalf("NewUsingAlloc: %v", err)
		}
		cell.Set(i)
		g.Register(cell)
	}

	if err := g.Flush(ctx); err != nil {
		t.Fatalf("Group.Flush: %v", err)
	}
	if be.TotalWrites() != 3 {
		t.Fatalf("expected 3 writes, got %d", be.TotalWrites())
	}
	// All clean now: a second group flush is a no-op.
	if err := g.Flush(ctx); err != nil {
		t.Fatalf("Group.Flush (clean): %v", err)
	}
	if be.TotalWrites() != 3 {
		t.Fatalf("clean group flush must not write, writes=%d", be.TotalWrites())
	}
}
