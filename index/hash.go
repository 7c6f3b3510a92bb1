package index

import (
	"github.com/hupe1980/quickset/model"
	"github.com/hupe1980/quickset/storage"
)

// HashIndex maps exact values to posting sets.
//
// Keys are the stable per-kind encodings from Value.Key, bucketed by
// Go's runtime map (seeded per process). A bucket is dropped as soon
// as its posting set empties so Lookup misses stay cheap.
type HashIndex struct {
	buckets map[string]*Postings
}

// NewHashIndex creates an empty hash index with a capacity hint.
func NewHashIndex(capacity int) *HashIndex {
	return &HashIndex{buckets: make(map[string]*Postings, capacity)}
}

// Insert adds (value, id) to the index.
func (ix *HashIndex) Insert(v storage.Value, id model.RowID) {
	key := v.Key()
	ids, ok := ix.buckets[key]
	if !ok {
		ids = NewPostings()
		ix.buckets[key] = ids
	}
	ids.Add(id)
}

// Remove deletes (value, id) from the index, discarding the bucket
// when its posting set empties.
func (ix *HashIndex) Remove(v storage.Value, id model.RowID) {
	key := v.Key()
	ids, ok := ix.buckets[key]
	if !ok {
		return
	}
	ids.Remove(id)
	if ids.IsEmpty() {
		delete(ix.buckets, key)
	}
}

// Lookup returns the posting set for an exact value, or nil when the
// value is absent. The returned set is shared; callers must not
// mutate it.
func (ix *HashIndex) Lookup(v storage.Value) *Postings {
	return ix.buckets[v.Key()]
}

// Len returns the number of distinct values in the index.
func (ix *HashIndex) Len() int {
	return len(ix.buckets)
}
