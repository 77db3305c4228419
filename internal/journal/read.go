package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/pagecache/internal/ingest"
	"github.com/roach88/pagecache/internal/record"
)

const selectEntries = `
	SELECT id, seq, kind, cache_id, page, payload
	FROM signals
`

// Read returns every entry in seq order.
//
// Returns an empty slice (not nil) if the journal is empty.
func (j *Journal) Read(ctx context.Context) ([]Entry, error) {
	return j.query(ctx, selectEntries+`
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// ReadQuery returns the entries addressing {cacheID, page} in seq order.
func (j *Journal) ReadQuery(ctx context.Context, cacheID string, page int) ([]Entry, error) {
	return j.query(ctx, selectEntries+`
		WHERE cache_id = ? AND page = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, cacheID, page)
}

// ReadUntil returns the entries with seq <= seq, in seq order.
func (j *Journal) ReadUntil(ctx context.Context, seq int64) ([]Entry, error) {
	return j.query(ctx, selectEntries+`
		WHERE seq <= ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, seq)
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e       Entry
		kind    string
		payload string
	)
	if err := rows.Scan(&e.ID, &e.Seq, &kind, &e.CacheID, &e.Page, &payload); err != nil {
		return Entry{}, fmt.Errorf("scan signal: %w", err)
	}
	e.Kind = ingest.Kind(kind)

	switch e.Kind {
	case ingest.KindRequestIssued, ingest.KindRequestSucceeded, ingest.KindRequestFailed:
	default:
		return Entry{}, fmt.Errorf("%w: %q (seq=%d)", ErrUnknownKind, kind, e.Seq)
	}

	body, err := record.DecodeObject([]byte(payload))
	if err != nil {
		return Entry{}, fmt.Errorf("decode signal seq=%d: %w", e.Seq, err)
	}
	sig, err := ingest.Decode(e.Kind, body)
	if err != nil {
		return Entry{}, fmt.Errorf("decode signal seq=%d: %w", e.Seq, err)
	}
	e.Signal = sig
	return e, nil
}
