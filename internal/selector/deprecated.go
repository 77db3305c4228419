package selector

import (
	"fmt"
	"log/slog"
)

// SelectQuery is the former name of SelectRequest.
//
// Deprecated: use SelectRequest. Every call logs a warning.
func SelectQuery(d Descriptor, opts ...Option) (Selector[*DenormalizedRequest], error) {
	slog.Warn("selector: SelectQuery is deprecated, use SelectRequest",
		"descriptor", describe(d),
	)
	return SelectRequest(d, opts...)
}

func describe(d Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return fmt.Sprint(d)
}
