package selector

import (
	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/state"
)

// Request is the raw view of a query.
//
// CacheID and Page are meaningful only when Bound is set; Operation and
// RequestAt only when Queried is set. A nil Error means "no error" and a nil
// Data means "no data"; a resolved empty page has a non-nil, empty Data.
// Error and Data are shared with the QueryState they were read from.
type Request struct {
	Status    state.Status
	Bound     bool
	Queried   bool
	CacheID   string
	Page      int
	Operation string
	RequestAt int64
	Error     record.Object
	Data      []int
}

func newRequest(res Resolution) *Request {
	req := &Request{
		Status:  state.StatusPending,
		Bound:   res.Bound,
		CacheID: res.CacheID,
		Page:    res.Page,
	}
	if qs := res.Query; qs != nil {
		req.Queried = true
		req.Status = qs.Status
		req.Operation = qs.Operation
		req.RequestAt = qs.RequestAt
		req.Error = qs.Error
		req.Data = qs.Data
	}
	return req
}

// Value renders the request in its API shape: status, error (false or the
// error object) and data (false or positions), plus cacheID/page and
// operation/requestAt when known.
func (r *Request) Value() record.Object {
	obj := r.header()
	if r.Data == nil {
		obj["data"] = record.Bool(false)
	} else {
		positions := make(record.List, len(r.Data))
		for i, p := range r.Data {
			positions[i] = record.Int(p)
		}
		obj["data"] = positions
	}
	return obj
}

func (r *Request) header() record.Object {
	obj := record.Object{"status": record.String(r.Status)}
	if r.Error == nil {
		obj["error"] = record.Bool(false)
	} else {
		obj["error"] = r.Error
	}
	if r.Bound {
		obj["cacheID"] = record.String(r.CacheID)
		obj["page"] = record.Int(r.Page)
	}
	if r.Queried {
		obj["operation"] = record.String(r.Operation)
		obj["requestAt"] = record.Int(r.RequestAt)
	}
	return obj
}

// MarshalJSON implements json.Marshaler.
func (r *Request) MarshalJSON() ([]byte, error) {
	return r.Value().MarshalJSON()
}

// DenormalizedRequest is a Request whose data holds entities. The embedded
// Request keeps the raw positions; Data shadows them.
type DenormalizedRequest struct {
	*Request
	Data []*Entity
}

// Value renders the request with entities in place of positions.
func (r *DenormalizedRequest) Value() record.Object {
	obj := r.Request.header()
	if r.Data == nil {
		obj["data"] = record.Bool(false)
	} else {
		entities := make(record.List, len(r.Data))
		for i, e := range r.Data {
			entities[i] = e.Value()
		}
		obj["data"] = entities
	}
	return obj
}

// MarshalJSON implements json.Marshaler.
func (r *DenormalizedRequest) MarshalJSON() ([]byte, error) {
	return r.Value().MarshalJSON()
}
