// Package selector derives request views from a state.Snapshot.
//
// Selectors are built once from a Descriptor and applied to any number of
// snapshots:
//
//	sel, err := selector.SelectRequest(selector.Name("posts"))
//	if err != nil {
//	    return err // ErrInvalidDescriptor
//	}
//	req := sel(snapshot)
//
// SelectRequestRaw projects the QueryState found through the name and query
// indexes. SelectRequest additionally replaces store positions with entities
// and resolves one level of embedded relations.
//
// Both are memoized per selector instance: applying a selector to the same
// snapshot, or to a snapshot whose relevant sub-trees are the same pointers,
// returns the identical output pointer. Outputs are shared and must be
// treated as read-only.
//
// WithDenormalize lets callers write their own derivations against the same
// entity lookup; SelectQuery is the deprecated name of SelectRequest.
package selector
