package journal

import (
	"context"
	"fmt"

	"github.com/roach88/pagecache/internal/ingest"
)

// Stats summarizes a journal.
type Stats struct {
	Entries int
	Queries int
	LastSeq int64
	ByKind  map[ingest.Kind]int
}

// Stats counts the stored entries.
func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByKind: map[ingest.Kind]int{}}

	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(seq), 0), COUNT(DISTINCT cache_id || '#' || page)
		FROM signals
	`).Scan(&st.Entries, &st.LastSeq, &st.Queries)
	if err != nil {
		return Stats{}, fmt.Errorf("journal stats: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM signals GROUP BY kind ORDER BY kind
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("journal stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return Stats{}, fmt.Errorf("journal stats: %w", err)
		}
		st.ByKind[ingest.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("journal stats: %w", err)
	}
	return st, nil
}
