package syncell

import "context"

// Flusher is anything holding pending slot writes. SyncCell implements it;
// composite structures embedding cells typically implement it by flushing
// their parts.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Group tracks live Flushers so a runtime can reconcile all of them at its
// end-of-call boundary with one call. Flush order is registration order.
type Group struct {
	members []Flusher
}

// Register adds f to the group. Register the same cell once per lifetime,
// not once per call.
func (g *Group) Register(f Flusher) {
	g.members = append(g.members, f)
}

// Flush flushes every member, stopping at the first error. Members already
// flushed stay clean; the failing member stays dirty and is retried by the
// next Flush.
func (g *Group) Flush(ctx context.Context) error {
	for _, f := range g.members {
		if err := f.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
