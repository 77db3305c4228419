package ingest

import (
	"errors"
	"fmt"

	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/state"
)

// maxEmbedDepth bounds how deep embedded entities are followed.
const maxEmbedDepth = 8

var errEmbedTooDeep = errors.New("embedded entities nested too deeply")

// store normalizes obj, writes it and every entity embedded in it to r, and
// returns the new store and obj's position.
func store(r *state.Resources, obj record.Object) (*state.Resources, int, error) {
	return storeAt(r, obj, 0)
}

func storeAt(r *state.Resources, obj record.Object, depth int) (*state.Resources, int, error) {
	if obj == nil {
		return nil, 0, errors.New("entity is null")
	}
	if depth > maxEmbedDepth {
		return nil, 0, errEmbedTooDeep
	}

	fields := obj
	if embedded, ok := obj[record.FieldEmbedded].(record.Object); ok && len(embedded) > 0 {
		flat := make(record.Object, len(embedded))
		for rel, v := range embedded {
			child, ok := embeddedEntity(v)
			if !ok {
				flat[rel] = v
				continue
			}
			next, pos, err := storeAt(r, child, depth+1)
			if err != nil {
				return nil, 0, fmt.Errorf("embedded %q: %w", rel, err)
			}
			r = next
			stored, _ := r.Get(pos)
			id, _ := stored.ID()
			flat[rel] = record.Int(id)
		}
		fields = obj.Clone()
		fields[record.FieldEmbedded] = flat
	}

	rec := record.New(fields)
	return upsert(r, rec)
}

// embeddedEntity reports whether v is an embedded entity with an id: an
// object, or a list holding exactly one object.
func embeddedEntity(v record.Value) (record.Object, bool) {
	if list, ok := v.(record.List); ok {
		if len(list) != 1 {
			return nil, false
		}
		v = list[0]
	}
	obj, ok := v.(record.Object)
	if !ok {
		return nil, false
	}
	if _, ok := record.New(obj).ID(); !ok {
		return nil, false
	}
	return obj, true
}

// upsert overwrites the record holding rec's id, or appends rec.
func upsert(r *state.Resources, rec *record.Record) (*state.Resources, int, error) {
	if id, ok := rec.ID(); ok {
		if pos, ok := r.PositionOf(id); ok {
			next, err := r.Set(pos, rec)
			if err != nil {
				return nil, 0, err
			}
			return next, pos, nil
		}
	}
	next, positions := r.Append(rec)
	return next, positions[0], nil
}
