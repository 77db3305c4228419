package selector

import "github.com/roach88/pagecache/internal/state"

// Resolution is what the query index yields for a descriptor.
//
// Bound is false only when a name has no binding; CacheID and Page are then
// unset. Query is nil when nothing has been requested at the coordinates
// yet, which callers model as a synthetic pending request.
type Resolution struct {
	Bound   bool
	CacheID string
	Page    int
	Query   *state.QueryState
}

// Resolve looks d up in the name and query indexes of s.
func Resolve(s *state.Snapshot, d Descriptor) (Resolution, error) {
	d, err := normalize(d)
	if err != nil {
		return Resolution{}, err
	}
	return resolve(orEmpty(s), d), nil
}

// resolve expects a normalized descriptor and a non-nil snapshot.
func resolve(s *state.Snapshot, d Descriptor) Resolution {
	var res Resolution

	switch v := d.(type) {
	case ByName:
		b, ok := s.RequestsByName.Get(v.Name)
		if !ok {
			return res
		}
		res.CacheID, res.Page = b.CacheID, b.Page
		if res.Page < 1 {
			res.Page = DefaultPage
		}
	case ByCoordinates:
		res.CacheID, res.Page = v.CacheID, v.Page
	}

	res.Bound = true
	if qs, ok := s.RequestsByQuery.Get(res.CacheID, res.Page); ok {
		res.Query = qs
	}
	return res
}

func orEmpty(s *state.Snapshot) *state.Snapshot {
	if s == nil {
		return state.Empty()
	}
	return s
}
