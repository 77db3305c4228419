package selector

import (
	"github.com/roach88/pagecache/internal/record"
)

// Entity is a stored record with its relations resolved.
//
// Record is the pointer held by the store, never a copy. Relations maps a
// relation name to the resolved target; relation targets carry no
// relations of their own.
type Entity struct {
	*record.Record
	Position  int
	Relations map[string]*Entity
}

// Relation returns the resolved target of the named relation.
func (e *Entity) Relation(name string) (*Entity, bool) {
	if e == nil {
		return nil, false
	}
	rel, ok := e.Relations[name]
	return rel, ok
}

// Value renders the entity as its record fields with every resolved
// relation attached under its name. A relation replaces a field of the same
// name. The record's own Fields map is not modified.
func (e *Entity) Value() record.Object {
	if e == nil || e.Record == nil {
		return record.Object{}
	}
	if len(e.Relations) == 0 {
		return e.Fields
	}

	obj := e.Fields.Clone()
	for name, rel := range e.Relations {
		obj[name] = rel.Value()
	}
	return obj
}

// MarshalJSON implements json.Marshaler.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return e.Value().MarshalJSON()
}
