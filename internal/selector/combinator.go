package selector

import "github.com/roach88/pagecache/internal/state"

// Denormalize resolves a reference to an entity against the snapshot it was
// bound to.
type Denormalize func(ref Ref) (*Entity, bool)

// WithDenormalize adapts a derived selector whose result is a computation
// over a Denormalize function. The returned selector evaluates factory and
// runs the computation with a Denormalize bound to the snapshot's resources.
//
// Snapshots sharing a Resources value share one Denormalizer, so they see
// the same entities. Keeping the factory's own output stable (for example by
// memoizing it) is up to the factory.
//
//	byID := func(id int64) selector.Selector[func(selector.Denormalize) *selector.Entity] {
//	    return func(*state.Snapshot) func(selector.Denormalize) *selector.Entity {
//	        return func(denormalize selector.Denormalize) *selector.Entity {
//	            e, _ := denormalize(selector.ID(id))
//	            return e
//	        }
//	    }
//	}
//	entity := selector.WithDenormalize(byID(1))(snapshot)
func WithDenormalize[T any](factory Selector[func(Denormalize) T]) Selector[T] {
	return func(s *state.Snapshot) T {
		s = orEmpty(s)
		compute := factory(s)
		return compute(denormalizerFor(s.Resources).Resolve)
	}
}
