package selector

import (
	"log/slog"
	"sync"

	"github.com/roach88/pagecache/internal/state"
)

// Ref addresses an entity by remote id or by store position.
type Ref struct {
	byPosition bool
	n          int64
}

// ID refers to the entity whose remote id is id.
func ID(id int64) Ref {
	return Ref{n: id}
}

// Position refers to the entity stored at pos.
func Position(pos int) Ref {
	return Ref{byPosition: true, n: int64(pos)}
}

// Denormalizer turns store positions and ids into entities for one
// Resources value. Entities are built lazily and cached, so every lookup of
// the same position through the same Denormalizer returns the same *Entity.
type Denormalizer struct {
	resources *state.Resources

	mu       sync.Mutex
	entities map[int]*Entity
	targets  map[int]*Entity
}

// NewDenormalizer returns a Denormalizer over r.
func NewDenormalizer(r *state.Resources) *Denormalizer {
	return &Denormalizer{
		resources: r,
		entities:  make(map[int]*Entity),
		targets:   make(map[int]*Entity),
	}
}

// denormalizerFor returns the Denormalizer attached to r. Every selector
// reading r gets the same one, so they hand out the same entities.
func denormalizerFor(r *state.Resources) *Denormalizer {
	return r.View(func(r *state.Resources) any {
		return NewDenormalizer(r)
	}).(*Denormalizer)
}

// Resources returns the store the Denormalizer reads.
func (d *Denormalizer) Resources() *state.Resources {
	return d.resources
}

// Resolve looks ref up and returns the entity with its relations resolved.
func (d *Denormalizer) Resolve(ref Ref) (*Entity, bool) {
	if ref.byPosition {
		return d.At(int(ref.n))
	}
	return d.ByID(ref.n)
}

// At returns the entity stored at pos.
func (d *Denormalizer) At(pos int) (*Entity, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entityAt(pos)
}

// ByID returns the entity whose remote id is id.
func (d *Denormalizer) ByID(id int64) (*Entity, bool) {
	pos, ok := d.resources.PositionOf(id)
	if !ok {
		return nil, false
	}
	return d.At(pos)
}

// Positions maps positions to entities, skipping positions that do not
// resolve. A nil input stays nil.
func (d *Denormalizer) Positions(positions []int) []*Entity {
	if positions == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Entity, 0, len(positions))
	for _, pos := range positions {
		e, ok := d.entityAt(pos)
		if !ok {
			slog.Debug("denormalize: position not in store", "position", pos)
			continue
		}
		out = append(out, e)
	}
	return out
}

func (d *Denormalizer) entityAt(pos int) (*Entity, bool) {
	if e, ok := d.entities[pos]; ok {
		return e, true
	}
	rec, ok := d.resources.Get(pos)
	if !ok {
		return nil, false
	}

	e := &Entity{Record: rec, Position: pos}
	for name, id := range rec.Relations() {
		target, ok := d.targetByID(id)
		if !ok {
			continue
		}
		if e.Relations == nil {
			e.Relations = make(map[string]*Entity)
		}
		e.Relations[name] = target
	}

	d.entities[pos] = e
	return e, true
}

// targetByID returns a relation target: the stored entity without its own
// relations, so resolution stops after one level.
func (d *Denormalizer) targetByID(id int64) (*Entity, bool) {
	rec, pos, ok := d.resources.GetByID(id)
	if !ok {
		return nil, false
	}
	if e, ok := d.targets[pos]; ok {
		return e, true
	}
	e := &Entity{Record: rec, Position: pos}
	d.targets[pos] = e
	return e, true
}
