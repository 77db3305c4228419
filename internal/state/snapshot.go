package state

// Snapshot is one immutable version of the cache state.
//
// Fields are exported for reading and for building fixtures; once a
// Snapshot has been handed to a reader neither it nor its sub-trees may be
// modified. Use the With* methods to derive successors.
type Snapshot struct {
	Resources       *Resources
	RequestsByName  *NameIndex
	RequestsByQuery *QueryIndex
}

// Empty returns a snapshot with no resources and no requests. All empty
// snapshots share the same sub-tree values.
func Empty() *Snapshot {
	return &Snapshot{
		Resources:       emptyResources,
		RequestsByName:  emptyNames,
		RequestsByQuery: emptyQueries,
	}
}

// WithResources returns a copy of s with r as its resources.
func (s *Snapshot) WithResources(r *Resources) *Snapshot {
	next := s.clone()
	next.Resources = r
	return next
}

// WithNames returns a copy of s with n as its name index.
func (s *Snapshot) WithNames(n *NameIndex) *Snapshot {
	next := s.clone()
	next.RequestsByName = n
	return next
}

// WithQueries returns a copy of s with q as its query index.
func (s *Snapshot) WithQueries(q *QueryIndex) *Snapshot {
	next := s.clone()
	next.RequestsByQuery = q
	return next
}

func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return Empty()
	}
	next := *s
	return &next
}
