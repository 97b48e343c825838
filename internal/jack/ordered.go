package jack

import "github.com/emirpasic/gods/maps/linkedhashmap"

// OrderedFields is an insertion-ordered string-keyed collection. Field
// declaration order matters for stable, human-reviewable debug dumps
// (internal/jack debug.go); it never
// affects the VM segment index a field is assigned, which comes from the
// SymbolTable.
type OrderedFields struct {
	m *linkedhashmap.Map
}

// NewOrderedFields returns an empty OrderedFields.
func NewOrderedFields() *OrderedFields {
	return &OrderedFields{m: linkedhashmap.New()}
}

// Put inserts or overwrites the value stored under key, preserving key's
// original insertion position if it was already present.
func (f *OrderedFields) Put(key string, value any) {
	f.m.Put(key, value)
}

// Get retrieves the value stored under key.
func (f *OrderedFields) Get(key string) (any, bool) {
	v, found := f.m.Get(key)
	return v, found
}

// Keys returns every key in insertion order.
func (f *OrderedFields) Keys() []string {
	raw := f.m.Keys()
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = k.(string)
	}
	return keys
}

// Len returns the number of entries.
func (f *OrderedFields) Len() int { return f.m.Size() }
