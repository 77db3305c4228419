package harness

import (
	"fmt"

	"github.com/roach88/pagecache/internal/ingest"
	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/state"
)

// Snapshot builds the snapshot f describes. A nil fixture is the empty
// snapshot.
func (f *Fixture) Snapshot() (*state.Snapshot, error) {
	s := state.Empty()
	if f == nil {
		return s, nil
	}

	if len(f.Resources) > 0 {
		records := make([]*record.Record, len(f.Resources))
		for i, fields := range f.Resources {
			obj, err := record.ObjectFromAny(fields)
			if err != nil {
				return nil, fmt.Errorf("resources[%d]: %w", i, err)
			}
			records[i] = record.New(obj)
		}
		s = s.WithResources(state.NewResources(records...))
	}

	if len(f.RequestsByName) > 0 {
		s = s.WithNames(state.NewNameIndex(f.RequestsByName))
	}

	if len(f.RequestsByQuery) > 0 {
		queries := make(map[string]map[int]*state.QueryState, len(f.RequestsByQuery))
		for cacheID, pages := range f.RequestsByQuery {
			queries[cacheID] = make(map[int]*state.QueryState, len(pages))
			for page, qf := range pages {
				qs, err := qf.queryState()
				if err != nil {
					return nil, fmt.Errorf("requestsByQuery[%s][%d]: %w", cacheID, page, err)
				}
				queries[cacheID][page] = qs
			}
		}
		s = s.WithQueries(state.NewQueryIndex(queries))
	}

	return s, nil
}

func (qf QueryFixture) queryState() (*state.QueryState, error) {
	status := state.Status(qf.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", qf.Status)
	}

	qs := &state.QueryState{
		Status:    status,
		Operation: qf.Operation,
		RequestAt: qf.RequestAt,
	}
	if qf.Data != nil {
		qs.Data = append([]int{}, qf.Data...)
	}
	if qf.Error != nil {
		errInfo, err := record.ObjectFromAny(map[string]any(qf.Error))
		if err != nil {
			return nil, fmt.Errorf("error: %w", err)
		}
		qs.Error = errInfo
	}
	return qs, nil
}

// DecodeSignals turns tagged signal objects into signals.
func DecodeSignals(raw []map[string]any) ([]ingest.Signal, error) {
	signals := make([]ingest.Signal, len(raw))
	for i, m := range raw {
		obj, err := record.ObjectFromAny(m)
		if err != nil {
			return nil, fmt.Errorf("signals[%d]: %w", i, err)
		}
		sig, err := ingest.DecodeTagged(obj)
		if err != nil {
			return nil, fmt.Errorf("signals[%d]: %w", i, err)
		}
		signals[i] = sig
	}
	return signals, nil
}
