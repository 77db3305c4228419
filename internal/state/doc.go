// Package state holds the immutable snapshot read by selectors.
//
// A Snapshot has three sub-trees:
//
//	resources:       ordered records, addressed by insertion position
//	requestsByName:  name -> {cacheID, page}
//	requestsByQuery: cacheID -> page -> QueryState
//
// Every sub-tree is a pointer to a value that is never mutated once
// published. Writers derive a new value (copy-on-write) and a new Snapshot
// that shares every sub-tree they did not touch. Readers may therefore use
// pointer equality of a sub-tree as "nothing below here changed", which is
// what the memo cells in package selector rely on.
//
// All read methods are nil-safe: a nil sub-tree behaves as an empty one.
package state
