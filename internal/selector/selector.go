package selector

import (
	"github.com/roach88/pagecache/internal/memo"
	"github.com/roach88/pagecache/internal/state"
)

// Selector derives a value from a snapshot. A nil snapshot is read as an
// empty one.
type Selector[T any] func(*state.Snapshot) T

// Must panics if err is non-nil. Use only with descriptors known to be valid.
func Must[T any](sel Selector[T], err error) Selector[T] {
	if err != nil {
		panic(err)
	}
	return sel
}

// Option configures a selector.
type Option func(*options)

type options struct {
	metrics *memo.Metrics
}

// WithMetrics reports the selector's memo activity to m.
func WithMetrics(m *memo.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// indexKey identifies the index sub-trees a raw selector reads. names is
// left nil for coordinate descriptors, which never consult the name index.
type indexKey struct {
	names   *state.NameIndex
	queries *state.QueryIndex
}

// rawInputs is everything a Request is computed from.
type rawInputs struct {
	bound   bool
	cacheID string
	page    int
	query   *state.QueryState
}

type rawSelector struct {
	desc    Descriptor
	indexes memo.Cell[indexKey, *Request]
	output  memo.Cell[rawInputs, *Request]
}

// SelectRequestRaw returns a selector projecting the QueryState d resolves
// to. It never reads resources.
//
// The returned selector is memoized twice: on the index sub-tree pointers,
// and on the resolved binding and QueryState pointer, so unrelated index
// changes do not produce a new Request either.
func SelectRequestRaw(d Descriptor, opts ...Option) (Selector[*Request], error) {
	d, err := normalize(d)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	rs := &rawSelector{desc: d}
	rs.indexes.Name, rs.indexes.Metrics = "request_raw.indexes", o.metrics
	rs.output.Name, rs.output.Metrics = "request_raw.output", o.metrics

	return rs.selectRequest, nil
}

func (rs *rawSelector) selectRequest(s *state.Snapshot) *Request {
	s = orEmpty(s)

	key := indexKey{queries: s.RequestsByQuery}
	if _, ok := rs.desc.(ByName); ok {
		key.names = s.RequestsByName
	}

	return rs.indexes.Get(key, func() *Request {
		res := resolve(s, rs.desc)
		in := rawInputs{bound: res.Bound, cacheID: res.CacheID, page: res.Page, query: res.Query}
		return rs.output.Get(in, func() *Request {
			return newRequest(res)
		})
	})
}

// denormKey identifies the inputs of a denormalized request.
type denormKey struct {
	raw       *Request
	resources *state.Resources
}

type denormSelector struct {
	raw    Selector[*Request]
	output memo.Cell[denormKey, *DenormalizedRequest]
}

// SelectRequest returns a selector producing the request d resolves to with
// positions replaced by entities and one level of relations resolved.
//
// Positions missing from the store are dropped. Entity records are the
// pointers held by the store.
func SelectRequest(d Descriptor, opts ...Option) (Selector[*DenormalizedRequest], error) {
	raw, err := SelectRequestRaw(d, opts...)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	ds := &denormSelector{raw: raw}
	ds.output.Name, ds.output.Metrics = "request.output", o.metrics

	return ds.selectRequest, nil
}

func (ds *denormSelector) selectRequest(s *state.Snapshot) *DenormalizedRequest {
	s = orEmpty(s)
	raw := ds.raw(s)

	key := denormKey{raw: raw}
	if raw.Data != nil {
		key.resources = s.Resources
	}

	return ds.output.Get(key, func() *DenormalizedRequest {
		out := &DenormalizedRequest{Request: raw}
		if raw.Data != nil {
			out.Data = denormalizerFor(s.Resources).Positions(raw.Data)
		}
		return out
	})
}
