// Package memo provides last-value memo cells keyed by comparable inputs.
//
// A selector owns its cells, so a cell is identified by (selector instance,
// key). Keys are built from pointers to immutable state sub-trees: an equal
// key means the inputs did not change and the previously computed value is
// returned as-is, preserving its identity.
package memo
