package journal

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagecache/internal/ingest"
	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/selector"
	"github.com/roach88/pagecache/internal/state"
	"github.com/roach88/pagecache/internal/testutil"
)

func openTestJournal(t *testing.T, opts ...Option) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j, path
}

func deterministic() []Option {
	return []Option{
		WithIDGenerator(testutil.NewSequentialIDs("sig")),
		WithSequencer(testutil.NewDeterministicClock()),
	}
}

func entity(t *testing.T, fields map[string]any) record.Object {
	t.Helper()
	obj, err := record.ObjectFromAny(fields)
	require.NoError(t, err)
	return obj
}

func lifecycle(t *testing.T) []ingest.Signal {
	return []ingest.Signal{
		ingest.RequestIssued{
			Payload: ingest.Payload{UID: "posts/", Page: 1},
			Meta:    ingest.Meta{Name: "test", Aggregator: "any", RequestAt: 1500000000000, Operation: "get"},
		},
		ingest.RequestSucceeded{UID: "posts/", Page: 1, Entities: []record.Object{
			entity(t, map[string]any{
				"id":        1,
				"title":     "lol",
				"_links":    map[string]any{"parent": map[string]any{"href": "posts/2"}},
				"_embedded": map[string]any{"parent": map[string]any{"id": 2, "title": "lol 2"}},
			}),
		}},
		ingest.RequestIssued{
			Payload: ingest.Payload{UID: "posts/", Page: 2},
			Meta:    ingest.Meta{Name: "next", RequestAt: 1500000000001, Operation: "get"},
		},
		ingest.RequestFailed{UID: "posts/", Page: 2, Error: entity(t, map[string]any{"code": "rest_forbidden"})},
	}
}

func TestOpen_Pragmas(t *testing.T) {
	j, _ := openTestJournal(t)

	assert.NoError(t, j.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, j.verifyPragma("synchronous", "1"))
	assert.NoError(t, j.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, j.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		j, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, j.Close())
	}
}

func TestAppend_AssignsSeqAndID(t *testing.T) {
	j, _ := openTestJournal(t, deterministic()...)
	ctx := context.Background()

	entries, err := j.AppendAll(ctx, lifecycle(t)...)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.Equal(t, "posts/", e.CacheID)
	}
	assert.Equal(t, "sig-000001", entries[0].ID)
	assert.Equal(t, ingest.KindRequestSucceeded, entries[1].Kind)
	assert.Equal(t, 2, entries[3].Page)
}

func TestAppend_UUIDv7ByDefault(t *testing.T) {
	j, _ := openTestJournal(t)

	e, err := j.Append(context.Background(), lifecycle(t)[0])
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[0-9a-f]{4}-[0-9a-f]{12}$`), e.ID)
	assert.Equal(t, int64(1), e.Seq)
}

func TestAppend_RejectsNilSignal(t *testing.T) {
	j, _ := openTestJournal(t)

	_, err := j.Append(context.Background(), nil)
	assert.ErrorIs(t, err, ingest.ErrMalformedSignal)

	entries, err := j.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendAll_Atomic(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()

	_, err := j.AppendAll(ctx, lifecycle(t)[0], nil)
	require.Error(t, err)

	entries, err := j.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed batch leaves nothing behind")
}

func TestRead_RoundTrip(t *testing.T) {
	j, _ := openTestJournal(t, deterministic()...)
	ctx := context.Background()
	sigs := lifecycle(t)

	_, err := j.AppendAll(ctx, sigs...)
	require.NoError(t, err)

	entries, err := j.Read(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(sigs))
	for i, e := range entries {
		assert.Equal(t, sigs[i], e.Signal, "entry %d", i)
	}

	page2, err := j.ReadQuery(ctx, "posts/", 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, int64(3), page2[0].Seq)

	early, err := j.ReadUntil(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, early, 2)
}

func TestRead_UnknownKind(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO signals (id, seq, kind, cache_id, page, payload)
		VALUES ('x', 1, 'request_cancelled', 'posts/', 1, '{}')
	`)
	require.NoError(t, err)

	_, err = j.Read(ctx)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestOpen_ResumesSeq(t *testing.T) {
	j, path := openTestJournal(t)
	ctx := context.Background()

	_, err := j.AppendAll(ctx, lifecycle(t)[:2]...)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	e, err := reopened.Append(ctx, lifecycle(t)[2])
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.Seq)
}

func TestReplay(t *testing.T) {
	j, _ := openTestJournal(t, deterministic()...)
	ctx := context.Background()

	_, err := j.AppendAll(ctx, lifecycle(t)...)
	require.NoError(t, err)

	s, err := j.Replay(ctx, nil)
	require.NoError(t, err)

	req := selector.Must(selector.SelectRequest(selector.Name("test")))(s)
	assert.Equal(t, state.StatusResolved, req.Status)
	require.Len(t, req.Data, 1)
	parent, ok := req.Data[0].Relation("parent")
	require.True(t, ok)
	assert.Equal(t, record.String("lol 2"), parent.Fields["title"])

	failed := selector.Must(selector.SelectRequestRaw(selector.Name("next")))(s)
	assert.Equal(t, state.StatusError, failed.Status)
	assert.Equal(t, record.String("rest_forbidden"), failed.Error["code"])
}

func TestReplayUntil(t *testing.T) {
	j, _ := openTestJournal(t, deterministic()...)
	ctx := context.Background()

	_, err := j.AppendAll(ctx, lifecycle(t)...)
	require.NoError(t, err)

	s, err := j.ReplayUntil(ctx, nil, 1)
	require.NoError(t, err)

	req := selector.Must(selector.SelectRequestRaw(selector.Name("test")))(s)
	assert.Equal(t, state.StatusPending, req.Status)
	assert.Equal(t, 0, s.Resources.Len())
}

func TestReplay_InvalidTransition(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()
	sigs := lifecycle(t)

	_, err := j.AppendAll(ctx, sigs[0], sigs[1], sigs[1])
	require.NoError(t, err)

	_, err = j.Replay(ctx, nil)
	assert.True(t, ingest.IsTransitionError(err))
	assert.Contains(t, err.Error(), "replay seq=3")
}

func TestReplay_Cancelled(t *testing.T) {
	j, _ := openTestJournal(t)
	_, err := j.AppendAll(context.Background(), lifecycle(t)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = j.Replay(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStats(t *testing.T) {
	j, _ := openTestJournal(t, deterministic()...)
	ctx := context.Background()

	st, err := j.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{ByKind: map[ingest.Kind]int{}}, st)

	_, err = j.AppendAll(ctx, lifecycle(t)...)
	require.NoError(t, err)

	st, err = j.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Entries: 4,
		Queries: 2,
		LastSeq: 4,
		ByKind: map[ingest.Kind]int{
			ingest.KindRequestIssued:    2,
			ingest.KindRequestSucceeded: 1,
			ingest.KindRequestFailed:    1,
		},
	}, st)
}

func TestPayload_Canonical(t *testing.T) {
	j, _ := openTestJournal(t, deterministic()...)
	ctx := context.Background()

	_, err := j.Append(ctx, lifecycle(t)[0])
	require.NoError(t, err)

	var payload string
	require.NoError(t, j.db.QueryRowContext(ctx, "SELECT payload FROM signals").Scan(&payload))
	assert.Equal(t,
		`{"meta":{"aggregator":"any","name":"test","operation":"get","requestAt":1500000000000},"payload":{"page":1,"uid":"posts/"}}`,
		payload)
}
