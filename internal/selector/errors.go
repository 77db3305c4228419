package selector

import "errors"

// ErrInvalidDescriptor is returned when a descriptor is neither a non-empty
// name nor coordinates carrying a cache id.
var ErrInvalidDescriptor = errors.New("selector: invalid request descriptor")
