package state

import "sort"

// Binding is the most recent coordinates requested under a name.
type Binding struct {
	CacheID string `json:"cacheID" yaml:"cacheID"`
	Page    int    `json:"page" yaml:"page"`
}

// NameIndex maps request names to their current Binding.
type NameIndex struct {
	bindings map[string]Binding
}

var emptyNames = &NameIndex{}

// NewNameIndex builds an index from a plain map. The map is copied.
func NewNameIndex(bindings map[string]Binding) *NameIndex {
	idx := &NameIndex{bindings: make(map[string]Binding, len(bindings))}
	for name, b := range bindings {
		idx.bindings[name] = b
	}
	return idx
}

// Get returns the binding for name.
func (n *NameIndex) Get(name string) (Binding, bool) {
	if n == nil {
		return Binding{}, false
	}
	b, ok := n.bindings[name]
	return b, ok
}

// Len returns the number of bound names.
func (n *NameIndex) Len() int {
	if n == nil {
		return 0
	}
	return len(n.bindings)
}

// Names returns the bound names in sorted order.
func (n *NameIndex) Names() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.bindings))
	for name := range n.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a new index where name is bound to b.
func (n *NameIndex) With(name string, b Binding) *NameIndex {
	next := &NameIndex{bindings: make(map[string]Binding, n.Len()+1)}
	if n != nil {
		for k, v := range n.bindings {
			next.bindings[k] = v
		}
	}
	next.bindings[name] = b
	return next
}
