package ingest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pagecache/internal/state"
)

// Apply returns the snapshot that results from sig. s is not modified; a
// nil s is read as the empty snapshot.
func Apply(s *state.Snapshot, sig Signal) (*state.Snapshot, error) {
	if s == nil {
		s = state.Empty()
	}

	switch v := sig.(type) {
	case RequestIssued:
		return applyIssued(s, v)
	case RequestSucceeded:
		return applySucceeded(s, v)
	case RequestFailed:
		return applyFailed(s, v)
	case nil:
		return nil, &ApplyError{Code: ErrCodeInvalidSignal, Message: "nil signal"}
	default:
		return nil, &ApplyError{Code: ErrCodeInvalidSignal, Message: fmt.Sprintf("unsupported signal %T", sig)}
	}
}

// ApplyAll folds sigs into s in order, stopping at the first failure.
func ApplyAll(s *state.Snapshot, sigs ...Signal) (*state.Snapshot, error) {
	for i, sig := range sigs {
		next, err := Apply(s, sig)
		if err != nil {
			return nil, fmt.Errorf("apply signal %d (%s): %w", i, kindOf(sig), err)
		}
		s = next
	}
	if s == nil {
		s = state.Empty()
	}
	return s, nil
}

func kindOf(sig Signal) Kind {
	if sig == nil {
		return ""
	}
	return sig.Kind()
}

// applyIssued starts a new query and binds the request name to it in the
// same transition. A query already at the coordinates is replaced, never
// modified.
func applyIssued(s *state.Snapshot, sig RequestIssued) (*state.Snapshot, error) {
	uid, page := sig.Payload.UID, pageOrDefault(sig.Payload.Page)
	if uid == "" {
		return nil, &ApplyError{Code: ErrCodeInvalidSignal, Message: "request issued without uid"}
	}

	qs := state.NewPendingQuery(sig.Meta.Operation, sig.Meta.RequestAt)
	next := s.WithQueries(s.RequestsByQuery.With(uid, page, qs))
	if sig.Meta.Name != "" {
		next = next.WithNames(next.RequestsByName.With(sig.Meta.Name, state.Binding{CacheID: uid, Page: page}))
	}

	slog.Debug("ingest: request issued",
		"name", sig.Meta.Name,
		"cacheID", uid,
		"page", page,
		"operation", sig.Meta.Operation,
	)
	return next, nil
}

func applySucceeded(s *state.Snapshot, sig RequestSucceeded) (*state.Snapshot, error) {
	uid, page := sig.UID, pageOrDefault(sig.Page)
	qs, err := pendingAt(s, uid, page)
	if err != nil {
		return nil, err
	}

	resources := s.Resources
	positions := make([]int, 0, len(sig.Entities))
	for i, obj := range sig.Entities {
		var pos int
		resources, pos, err = store(resources, obj)
		if err != nil {
			return nil, &ApplyError{
				Code:    ErrCodeInvalidEntity,
				Message: fmt.Sprintf("entity %d: %v", i, err),
				CacheID: uid,
				Page:    page,
				Err:     err,
			}
		}
		positions = append(positions, pos)
	}

	resolved, err := qs.Resolve(positions)
	if err != nil {
		return nil, transitionError(uid, page, err)
	}

	next := s.WithQueries(s.RequestsByQuery.With(uid, page, resolved))
	if len(sig.Entities) > 0 {
		next = next.WithResources(resources)
	}

	slog.Debug("ingest: request resolved",
		"cacheID", uid,
		"page", page,
		"entities", len(positions),
	)
	return next, nil
}

func applyFailed(s *state.Snapshot, sig RequestFailed) (*state.Snapshot, error) {
	uid, page := sig.UID, pageOrDefault(sig.Page)
	qs, err := pendingAt(s, uid, page)
	if err != nil {
		return nil, err
	}

	failed, err := qs.Fail(sig.Error)
	if err != nil {
		return nil, transitionError(uid, page, err)
	}

	slog.Debug("ingest: request failed", "cacheID", uid, "page", page)
	return s.WithQueries(s.RequestsByQuery.With(uid, page, failed)), nil
}

// pendingAt returns the query a completion signal refers to.
func pendingAt(s *state.Snapshot, uid string, page int) (*state.QueryState, error) {
	if uid == "" {
		return nil, &ApplyError{Code: ErrCodeInvalidSignal, Message: "completion without uid"}
	}
	qs, ok := s.RequestsByQuery.Get(uid, page)
	if !ok {
		return nil, fmt.Errorf("%w: %s#%d", ErrUnknownRequest, uid, page)
	}
	if qs.Status != state.StatusPending {
		return nil, transitionError(uid, page, fmt.Errorf("%w: query is %s", state.ErrInvalidTransition, qs.Status))
	}
	return qs, nil
}

func transitionError(uid string, page int, err error) error {
	msg := "query is not pending"
	if !errors.Is(err, state.ErrInvalidTransition) {
		msg = err.Error()
	}
	return &ApplyError{
		Code:    ErrCodeInvalidTransition,
		Message: msg,
		CacheID: uid,
		Page:    page,
		Err:     err,
	}
}
