// Package ingest is the write path of the cache.
//
// Three signals drive a query through its lifecycle:
//
//	RequestIssued    -> pending QueryState at {uid, page}, name bound to it
//	RequestSucceeded -> resolved, fetched entities stored, Data = positions
//	RequestFailed    -> error, error object kept verbatim
//
// Apply folds one signal into a snapshot and returns the successor. Only the
// sub-trees a signal touches are replaced, so selectors memoized on the
// untouched ones keep their outputs.
//
// Fetched entities are normalized before they are stored: an entity found
// under "_embedded.<relation>" is stored as a record of its own and replaced
// by its id. Records carrying an id that is already stored overwrite the
// existing position instead of taking a new one.
package ingest
