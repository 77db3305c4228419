package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/pagecache/internal/ingest"
	"github.com/roach88/pagecache/internal/record"
)

// Entry is one stored signal.
type Entry struct {
	ID      string
	Seq     int64
	Kind    ingest.Kind
	CacheID string
	Page    int
	Signal  ingest.Signal
}

// Append stores sig and returns the entry written for it.
func (j *Journal) Append(ctx context.Context, sig ingest.Signal) (Entry, error) {
	entries, err := j.AppendAll(ctx, sig)
	if err != nil {
		return Entry{}, err
	}
	return entries[0], nil
}

// AppendAll stores sigs in one transaction, in order. Either all of them
// are stored or none is.
func (j *Journal) AppendAll(ctx context.Context, sigs ...ingest.Signal) ([]Entry, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("append signals: %w", err)
	}
	defer tx.Rollback()

	entries := make([]Entry, 0, len(sigs))
	for i, sig := range sigs {
		e, err := j.insert(ctx, tx, sig)
		if err != nil {
			return nil, fmt.Errorf("append signal %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("append signals: %w", err)
	}
	return entries, nil
}

func (j *Journal) insert(ctx context.Context, tx *sql.Tx, sig ingest.Signal) (Entry, error) {
	body, err := ingest.Encode(sig)
	if err != nil {
		return Entry{}, err
	}
	payload, err := record.MarshalCanonical(body)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal payload: %w", err)
	}

	cacheID, page := coordinates(sig)
	e := Entry{
		ID:      j.ids.Generate(),
		Seq:     j.seq.Next(),
		Kind:    sig.Kind(),
		CacheID: cacheID,
		Page:    page,
		Signal:  sig,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO signals (id, seq, kind, cache_id, page, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Seq,
		string(e.Kind),
		e.CacheID,
		e.Page,
		string(payload),
	)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// coordinates returns the query a signal addresses.
func coordinates(sig ingest.Signal) (string, int) {
	var (
		uid  string
		page int
	)
	switch s := sig.(type) {
	case ingest.RequestIssued:
		uid, page = s.Payload.UID, s.Payload.Page
	case ingest.RequestSucceeded:
		uid, page = s.UID, s.Page
	case ingest.RequestFailed:
		uid, page = s.UID, s.Page
	}
	if page < 1 {
		page = 1
	}
	return uid, page
}
