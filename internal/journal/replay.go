package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pagecache/internal/ingest"
	"github.com/roach88/pagecache/internal/state"
)

// Replay folds every entry into base, in seq order, and returns the
// resulting snapshot. A nil base is the empty snapshot.
func (j *Journal) Replay(ctx context.Context, base *state.Snapshot) (*state.Snapshot, error) {
	entries, err := j.Read(ctx)
	if err != nil {
		return nil, err
	}
	return fold(ctx, base, entries)
}

// ReplayUntil is Replay restricted to entries with seq <= seq.
func (j *Journal) ReplayUntil(ctx context.Context, base *state.Snapshot, seq int64) (*state.Snapshot, error) {
	entries, err := j.ReadUntil(ctx, seq)
	if err != nil {
		return nil, err
	}
	return fold(ctx, base, entries)
}

func fold(ctx context.Context, base *state.Snapshot, entries []Entry) (*state.Snapshot, error) {
	s := base
	if s == nil {
		s = state.Empty()
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := ingest.Apply(s, e.Signal)
		if err != nil {
			return nil, fmt.Errorf("replay seq=%d: %w", e.Seq, err)
		}
		s = next
	}

	slog.Debug("journal: replayed", "entries", len(entries))
	return s, nil
}
