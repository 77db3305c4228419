package selector

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/state"
)

func TestSelectRequestRaw_InvalidDescriptor(t *testing.T) {
	_, err := SelectRequestRaw(nil)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = SelectRequestRaw(Name(""))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = SelectRequestRaw(Coordinates("", 1))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = SelectRequest(nil)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestSelectRequestRaw_EmptyState(t *testing.T) {
	req := Must(SelectRequestRaw(Name("test")))(state.Empty())

	assert.Equal(t, &Request{Status: state.StatusPending}, req)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"pending","error":false,"data":false}`, string(data))
}

func TestSelectRequestRaw_NilSnapshot(t *testing.T) {
	req := Must(SelectRequestRaw(Name("test")))(nil)
	assert.Equal(t, state.StatusPending, req.Status)
	assert.Nil(t, req.Data)
}

func TestSelectRequestRaw_PendingState(t *testing.T) {
	s := withRequest(state.Empty(), "test", "test/", 1, pendingQuery())

	req := Must(SelectRequestRaw(Name("test")))(s)

	assert.Equal(t, &Request{
		Status:    state.StatusPending,
		Bound:     true,
		Queried:   true,
		CacheID:   "test/",
		Page:      1,
		Operation: "get",
		RequestAt: testRequestAt,
	}, req)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "pending",
		"operation": "get",
		"requestAt": 1500000000000,
		"cacheID": "test/",
		"page": 1,
		"error": false,
		"data": false
	}`, string(data))
}

func TestSelectRequestRaw_BindingWithoutQuery(t *testing.T) {
	s := withRequest(state.Empty(), "test", "test/", 2, nil)

	req := Must(SelectRequestRaw(Name("test")))(s)

	assert.Equal(t, state.StatusPending, req.Status)
	assert.True(t, req.Bound)
	assert.False(t, req.Queried)
	assert.Equal(t, "test/", req.CacheID)
	assert.Equal(t, 2, req.Page)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"pending","cacheID":"test/","page":2,"error":false,"data":false}`, string(data))
}

func TestSelectRequestRaw_CoordinatesDefaultPage(t *testing.T) {
	s := withRequest(state.Empty(), "", "test/", 1, resolvedQuery(0))

	req := Must(SelectRequestRaw(Coordinates("test/", 0)))(s)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, state.StatusResolved, req.Status)

	missing := Must(SelectRequestRaw(Coordinates("other/", 3)))(s)
	assert.Equal(t, &Request{Status: state.StatusPending, Bound: true, CacheID: "other/", Page: 3}, missing)
}

func TestSelectRequestRaw_ByCoordinates(t *testing.T) {
	resource := entity(map[string]any{"id": 1, "title": "lol"})
	s := state.Empty().WithResources(state.NewResources(resource))
	s = withRequest(s, "test", "test/", 1, resolvedQuery(0))

	req := Must(SelectRequestRaw(Coordinates("test/", 1)))(s)

	assert.Equal(t, &Request{
		Status:    state.StatusResolved,
		Bound:     true,
		Queried:   true,
		CacheID:   "test/",
		Page:      1,
		Operation: "get",
		RequestAt: testRequestAt,
		Data:      []int{0},
	}, req)
}

func TestSelectRequestRaw_SameStateSameReference(t *testing.T) {
	resource := entity(map[string]any{"id": 1, "title": "lol"})
	s := state.Empty().WithResources(state.NewResources(resource))
	s = withRequest(s, "test", "test/", 1, resolvedQuery(0))

	sel := Must(SelectRequestRaw(Name("test")))
	first := sel(s)
	assert.Same(t, first, sel(s))
}

func TestSelectRequestRaw_ErrorPassedThrough(t *testing.T) {
	errInfo := record.Object{
		"code":    record.String("rest_forbidden"),
		"message": record.String("Sorry, you are not allowed to do that."),
		"data":    record.Object{"status": record.Int(403)},
	}
	qs := &state.QueryState{Status: state.StatusError, Error: errInfo, Operation: "get", RequestAt: testRequestAt}
	s := withRequest(state.Empty(), "test", "test/", 1, qs)

	raw := Must(SelectRequestRaw(Name("test")))(s)
	assert.Equal(t, state.StatusError, raw.Status)
	assert.Equal(t, mapAddr(errInfo), mapAddr(raw.Error), "error is the same map, not a copy")

	denorm := Must(SelectRequest(Name("test")))(s)
	assert.Equal(t, mapAddr(errInfo), mapAddr(denorm.Error))
	assert.Nil(t, denorm.Data)
}

func TestSelectRequest_EmptyState(t *testing.T) {
	sel := Must(SelectRequest(Name("test")))
	s := state.Empty()

	for i := 0; i < 2; i++ {
		req := sel(s)
		assert.Equal(t, state.StatusPending, req.Status)
		assert.Nil(t, req.Error)
		assert.Nil(t, req.Data)

		data, err := json.Marshal(req)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"pending","error":false,"data":false}`, string(data))
	}
}

func TestSelectRequest_PendingState(t *testing.T) {
	s := withRequest(state.Empty(), "test", "test/", 1, pendingQuery())

	req := Must(SelectRequest(Name("test")))(s)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "pending",
		"operation": "get",
		"requestAt": 1500000000000,
		"cacheID": "test/",
		"page": 1,
		"error": false,
		"data": false
	}`, string(data))
}

func TestSelectRequest_ResolvedWithoutEmbedded(t *testing.T) {
	resource := entity(map[string]any{"id": 1, "title": "lol"})
	s := state.Empty().WithResources(state.NewResources(resource))
	s = withRequest(s, "test", "test/", 1, resolvedQuery(0))

	for _, d := range []Descriptor{Name("test"), Coordinates("test/", 1)} {
		t.Run(d.String(), func(t *testing.T) {
			req := Must(SelectRequest(d))(s)

			assert.Equal(t, state.StatusResolved, req.Status)
			assert.Equal(t, "get", req.Operation)
			assert.Equal(t, testRequestAt, req.RequestAt)
			assert.Equal(t, "test/", req.CacheID)
			assert.Equal(t, 1, req.Page)
			assert.Nil(t, req.Error)
			assert.Equal(t, []int{0}, req.Request.Data)

			require.Len(t, req.Data, 1)
			assert.Same(t, resource, req.Data[0].Record)
			assert.Equal(t, resource.Fields, req.Data[0].Value())
		})
	}
}

func TestSelectRequest_ResolvedWithEmbedded(t *testing.T) {
	resources := embeddedResources()
	s := state.Empty().WithResources(state.NewResources(resources...))
	s = withRequest(s, "test", "test/", 1, resolvedQuery(0))

	req := Must(SelectRequest(Name("test")))(s)

	require.Len(t, req.Data, 1)
	got := req.Data[0]
	assert.Same(t, resources[0], got.Record)

	parent, ok := got.Relation("parent")
	require.True(t, ok)
	assert.Same(t, resources[1], parent.Record)
	assert.Equal(t, resources[1].Fields, parent.Value())
	assert.Empty(t, parent.Relations, "relations resolve one level only")

	value := got.Value()
	for k, v := range resources[0].Fields {
		assert.Equal(t, v, value[k])
	}
	assert.Equal(t, resources[1].Fields, value["parent"])
	_, leaked := resources[0].Fields["parent"]
	assert.False(t, leaked, "stored record must not be modified")
}

func TestSelectRequest_MissingRelationIsAbsent(t *testing.T) {
	a := entity(map[string]any{
		"id":        1,
		"_links":    map[string]any{"parent": map[string]any{"url": "x"}, "author": "malformed"},
		"_embedded": map[string]any{"parent": 42, "author": 1},
	})
	s := state.Empty().WithResources(state.NewResources(a))
	s = withRequest(s, "test", "test/", 1, resolvedQuery(0))

	req := Must(SelectRequest(Name("test")))(s)
	require.Len(t, req.Data, 1)
	assert.Nil(t, req.Data[0].Relations)

	_, present := req.Data[0].Value()["parent"]
	assert.False(t, present, "unresolvable relation is left absent, not null")
}

func TestSelectRequest_UnresolvablePositionsOmitted(t *testing.T) {
	resource := entity(map[string]any{"id": 1})
	s := state.Empty().WithResources(state.NewResources(resource))
	s = withRequest(s, "test", "test/", 1, resolvedQuery(5, 0, -1))

	req := Must(SelectRequest(Name("test")))(s)
	require.Len(t, req.Data, 1)
	assert.Equal(t, 0, req.Data[0].Position)
}

func TestSelectRequest_ResolvedEmptyPage(t *testing.T) {
	s := withRequest(state.Empty(), "test", "test/", 1, resolvedQuery())
	s.RequestsByQuery = s.RequestsByQuery.With("test/", 1, &state.QueryState{
		Status: state.StatusResolved, Operation: "get", RequestAt: testRequestAt, Data: []int{},
	})

	req := Must(SelectRequest(Name("test")))(s)
	require.NotNil(t, req.Data)
	assert.Empty(t, req.Data)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":[]`)
}

func TestSelectRequest_SameStateSameReference(t *testing.T) {
	resource := entity(map[string]any{"id": 1, "title": "lol"})
	s := state.Empty().WithResources(state.NewResources(resource))
	s = withRequest(s, "test", "test/", 1, resolvedQuery(0))

	sel := Must(SelectRequest(Name("test")))
	first := sel(s)
	assert.Same(t, first, sel(s))
}
