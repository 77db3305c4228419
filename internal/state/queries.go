package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/pagecache/internal/record"
)

// Status is the lifecycle state of a query.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusError    Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusResolved, StatusError:
		return true
	}
	return false
}

// ErrInvalidTransition is returned when a QueryState leaves a terminal status.
var ErrInvalidTransition = errors.New("state: invalid query transition")

// QueryState is one request issued at a {cacheID, page} coordinate.
//
// Error and Data model the "false | value" fields of the API: a nil Error
// means no error, a nil Data means no data yet, and a non-nil empty Data is
// a resolved, empty page.
type QueryState struct {
	Status    Status
	Error     record.Object
	RequestAt int64
	Operation string
	Data      []int
}

// NewPendingQuery starts a new query.
func NewPendingQuery(operation string, requestAt int64) *QueryState {
	return &QueryState{
		Status:    StatusPending,
		Operation: operation,
		RequestAt: requestAt,
	}
}

// Resolve returns the resolved successor of a pending query.
func (q *QueryState) Resolve(positions []int) (*QueryState, error) {
	if q.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, StatusResolved)
	}
	data := make([]int, len(positions))
	copy(data, positions)
	return &QueryState{
		Status:    StatusResolved,
		RequestAt: q.RequestAt,
		Operation: q.Operation,
		Data:      data,
	}, nil
}

// Fail returns the errored successor of a pending query. errInfo is kept
// as given.
func (q *QueryState) Fail(errInfo record.Object) (*QueryState, error) {
	if q.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, StatusError)
	}
	if errInfo == nil {
		errInfo = record.Object{}
	}
	return &QueryState{
		Status:    StatusError,
		Error:     errInfo,
		RequestAt: q.RequestAt,
		Operation: q.Operation,
	}, nil
}

// QueryIndex maps cacheID -> page -> QueryState.
type QueryIndex struct {
	byCache map[string]map[int]*QueryState
}

var emptyQueries = &QueryIndex{}

// NewQueryIndex builds an index from a nested map. Both levels are copied;
// QueryState values are shared.
func NewQueryIndex(queries map[string]map[int]*QueryState) *QueryIndex {
	idx := &QueryIndex{byCache: make(map[string]map[int]*QueryState, len(queries))}
	for cacheID, pages := range queries {
		inner := make(map[int]*QueryState, len(pages))
		for page, qs := range pages {
			inner[page] = qs
		}
		idx.byCache[cacheID] = inner
	}
	return idx
}

// Get returns the QueryState at {cacheID, page}.
func (q *QueryIndex) Get(cacheID string, page int) (*QueryState, bool) {
	if q == nil {
		return nil, false
	}
	qs, ok := q.byCache[cacheID][page]
	return qs, ok
}

// CacheIDs returns the known cache ids in sorted order.
func (q *QueryIndex) CacheIDs() []string {
	if q == nil {
		return nil
	}
	ids := make([]string, 0, len(q.byCache))
	for id := range q.byCache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Pages returns the pages known under cacheID in ascending order.
func (q *QueryIndex) Pages(cacheID string) []int {
	if q == nil {
		return nil
	}
	pages := make([]int, 0, len(q.byCache[cacheID]))
	for p := range q.byCache[cacheID] {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// With returns a new index with qs at {cacheID, page}. Only the page map of
// cacheID is copied; other cache ids share their page maps with q.
func (q *QueryIndex) With(cacheID string, page int, qs *QueryState) *QueryIndex {
	var outer map[string]map[int]*QueryState
	if q != nil {
		outer = q.byCache
	}

	next := &QueryIndex{byCache: make(map[string]map[int]*QueryState, len(outer)+1)}
	for id, pages := range outer {
		next.byCache[id] = pages
	}

	inner := make(map[int]*QueryState, len(outer[cacheID])+1)
	for p, s := range outer[cacheID] {
		inner[p] = s
	}
	inner[page] = qs
	next.byCache[cacheID] = inner

	return next
}
