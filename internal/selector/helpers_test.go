package selector

import (
	"fmt"

	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/state"
)

const testRequestAt = int64(1500000000000)

func entity(fields map[string]any) *record.Record {
	obj, err := record.ObjectFromAny(fields)
	if err != nil {
		panic(err)
	}
	return record.New(obj)
}

// withRequest binds name to {cacheID, page} and places qs there, the way
// the write path does in a single transition.
func withRequest(s *state.Snapshot, name, cacheID string, page int, qs *state.QueryState) *state.Snapshot {
	next := s
	if name != "" {
		next = next.WithNames(next.RequestsByName.With(name, state.Binding{CacheID: cacheID, Page: page}))
	}
	if qs != nil {
		next = next.WithQueries(next.RequestsByQuery.With(cacheID, page, qs))
	}
	return next
}

func pendingQuery() *state.QueryState {
	return &state.QueryState{Status: state.StatusPending, Operation: "get", RequestAt: testRequestAt}
}

func resolvedQuery(positions ...int) *state.QueryState {
	return &state.QueryState{
		Status:    state.StatusResolved,
		Operation: "get",
		RequestAt: testRequestAt,
		Data:      positions,
	}
}

// embeddedResources is an entity whose parent relation points at the
// second entity by id.
func embeddedResources() []*record.Record {
	return []*record.Record{
		entity(map[string]any{
			"id":        1,
			"title":     "lol",
			"_links":    map[string]any{"parent": map[string]any{"url": "http://dumb.com/test/2"}},
			"_embedded": map[string]any{"parent": 2},
		}),
		entity(map[string]any{"id": 2, "title": "lol 2"}),
	}
}

func mapAddr(m record.Object) string {
	return fmt.Sprintf("%p", m)
}
