package state

import (
	"fmt"
	"sync"

	"github.com/roach88/pagecache/internal/record"
)

// Resources is the entity store. Records are addressed by the position they
// were inserted at; a secondary index maps remote ids to positions for
// relation resolution. When two records share an id the later position wins.
//
// A Resources value is never modified after construction, apart from its
// lazily built view (see View).
type Resources struct {
	records []*record.Record
	byID    map[int64]int

	viewOnce sync.Once
	view     any
}

var emptyResources = &Resources{}

// NewResources builds a store holding records at positions 0..n-1.
func NewResources(records ...*record.Record) *Resources {
	r := &Resources{records: append([]*record.Record(nil), records...)}
	r.byID = indexByID(r.records)
	return r
}

func indexByID(records []*record.Record) map[int64]int {
	idx := make(map[int64]int, len(records))
	for pos, rec := range records {
		if id, ok := rec.ID(); ok {
			idx[id] = pos
		}
	}
	return idx
}

// Len returns the number of positions in use.
func (r *Resources) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Get returns the record at pos.
func (r *Resources) Get(pos int) (*record.Record, bool) {
	if r == nil || pos < 0 || pos >= len(r.records) {
		return nil, false
	}
	rec := r.records[pos]
	return rec, rec != nil
}

// GetByID returns the record whose remote id is id, and its position.
func (r *Resources) GetByID(id int64) (*record.Record, int, bool) {
	if r == nil {
		return nil, 0, false
	}
	pos, ok := r.byID[id]
	if !ok {
		return nil, 0, false
	}
	return r.records[pos], pos, true
}

// PositionOf returns the position currently holding remote id.
func (r *Resources) PositionOf(id int64) (int, bool) {
	if r == nil {
		return 0, false
	}
	pos, ok := r.byID[id]
	return pos, ok
}

// View returns the value build returned on the first call for r; later calls
// return that value without calling build. Readers use it to keep one
// derived structure per store that lives exactly as long as the store. A
// nil r shares the empty store's view.
func (r *Resources) View(build func(*Resources) any) any {
	if r == nil {
		r = emptyResources
	}
	r.viewOnce.Do(func() {
		r.view = build(r)
	})
	return r.view
}

// Records returns a copy of the position-ordered record slice.
func (r *Resources) Records() []*record.Record {
	if r == nil {
		return nil
	}
	return append([]*record.Record(nil), r.records...)
}

// Append returns a new store with recs added at the end, and the positions
// they were assigned. The receiver is unchanged.
func (r *Resources) Append(recs ...*record.Record) (*Resources, []int) {
	n := r.Len()
	records := make([]*record.Record, n, n+len(recs))
	if n > 0 {
		copy(records, r.records)
	}

	byID := make(map[int64]int, n+len(recs))
	if r != nil {
		for id, pos := range r.byID {
			byID[id] = pos
		}
	}

	positions := make([]int, len(recs))
	for i, rec := range recs {
		positions[i] = len(records)
		records = append(records, rec)
		if id, ok := rec.ID(); ok {
			byID[id] = positions[i]
		}
	}

	return &Resources{records: records, byID: byID}, positions
}

// Set returns a new store with rec at pos. pos may address an existing slot
// (overwrite) or be exactly Len() (append).
func (r *Resources) Set(pos int, rec *record.Record) (*Resources, error) {
	n := r.Len()
	if pos < 0 || pos > n {
		return nil, fmt.Errorf("set resource: position %d out of range [0,%d]", pos, n)
	}
	if pos == n {
		next, _ := r.Append(rec)
		return next, nil
	}

	records := make([]*record.Record, n)
	copy(records, r.records)
	records[pos] = rec

	return &Resources{records: records, byID: indexByID(records)}, nil
}
