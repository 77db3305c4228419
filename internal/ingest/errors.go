package ingest

import (
	"errors"
	"fmt"
)

// ErrUnknownRequest is returned when a completion signal names coordinates
// that no request was issued for.
var ErrUnknownRequest = errors.New("ingest: unknown request")

// ErrMalformedSignal is returned when a signal cannot be decoded.
var ErrMalformedSignal = errors.New("ingest: malformed signal")

// ApplyError is a signal that decoded fine but cannot be applied to the
// current snapshot.
type ApplyError struct {
	// Code identifies the error category.
	Code ApplyErrorCode

	// Message is a human-readable description.
	Message string

	// CacheID and Page locate the affected query, when known.
	CacheID string
	Page    int

	// Err is the underlying cause, if any.
	Err error
}

// ApplyErrorCode categorizes apply errors.
type ApplyErrorCode string

const (
	// ErrCodeInvalidSignal indicates a signal missing required fields.
	ErrCodeInvalidSignal ApplyErrorCode = "INVALID_SIGNAL"

	// ErrCodeInvalidTransition indicates a completion for a query that is no
	// longer pending.
	ErrCodeInvalidTransition ApplyErrorCode = "INVALID_TRANSITION"

	// ErrCodeInvalidEntity indicates a fetched entity that cannot be stored.
	ErrCodeInvalidEntity ApplyErrorCode = "INVALID_ENTITY"
)

// Error implements the error interface.
func (e *ApplyError) Error() string {
	if e.CacheID != "" {
		return fmt.Sprintf("%s: %s (query=%s#%d)", e.Code, e.Message, e.CacheID, e.Page)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// IsTransitionError reports whether err is an invalid status transition.
func IsTransitionError(err error) bool {
	return hasCode(err, ErrCodeInvalidTransition)
}

// IsInvalidSignal reports whether err is a signal missing required fields.
func IsInvalidSignal(err error) bool {
	return hasCode(err, ErrCodeInvalidSignal)
}

// IsInvalidEntity reports whether err is an entity that could not be stored.
func IsInvalidEntity(err error) bool {
	return hasCode(err, ErrCodeInvalidEntity)
}

func hasCode(err error, code ApplyErrorCode) bool {
	var ae *ApplyError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
