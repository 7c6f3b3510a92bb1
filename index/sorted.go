package index

import (
	"sort"

	"github.com/hupe1980/quickset/model"
	"github.com/hupe1980/quickset/storage"
)

// SortedIndex keeps (value, row ID) pairs totally ordered by value,
// then row ID, for binary-searched range scans.
//
// The layout is columnar: order-preserving uint64 key encodings in
// keys aligned with ids. Int and float columns get separate indexes;
// the encodings are never mixed. Insert pays an O(n) shift to keep
// the arrays contiguous, which the read-heavy target accepts.
type SortedIndex struct {
	keys []uint64
	ids  []model.RowID
}

// NewSortedIndex creates an empty sorted index with a capacity hint.
func NewSortedIndex(capacity int) *SortedIndex {
	return &SortedIndex{
		keys: make([]uint64, 0, capacity),
		ids:  make([]model.RowID, 0, capacity),
	}
}

// locate returns the position of the first pair >= (key, id).
func (ix *SortedIndex) locate(key uint64, id model.RowID) int {
	return sort.Search(len(ix.keys), func(i int) bool {
		if ix.keys[i] != key {
			return ix.keys[i] > key
		}
		return ix.ids[i] >= id
	})
}

// Insert adds (value, id). Non-numeric values are rejected by the
// storage layer before reaching here and are ignored defensively.
func (ix *SortedIndex) Insert(v storage.Value, id model.RowID) {
	key, ok := v.OrderKey()
	if !ok {
		return
	}
	i := ix.locate(key, id)
	ix.keys = append(ix.keys, 0)
	ix.ids = append(ix.ids, 0)
	copy(ix.keys[i+1:], ix.keys[i:])
	copy(ix.ids[i+1:], ix.ids[i:])
	ix.keys[i] = key
	ix.ids[i] = id
}

// Remove deletes (value, id) when present.
func (ix *SortedIndex) Remove(v storage.Value, id model.RowID) {
	key, ok := v.OrderKey()
	if !ok {
		return
	}
	i := ix.locate(key, id)
	if i >= len(ix.keys) || ix.keys[i] != key || ix.ids[i] != id {
		return
	}
	ix.keys = append(ix.keys[:i], ix.keys[i+1:]...)
	ix.ids = append(ix.ids[:i], ix.ids[i+1:]...)
}

// Range returns the rows whose value v satisfies min <= v <= max,
// both bounds inclusive. A NaN bound yields the empty set. The
// returned set is owned by the caller.
func (ix *SortedIndex) Range(min, max storage.Value) *Postings {
	out := NewPostings()
	if min.IsNaN() || max.IsNaN() {
		return out
	}
	lo, ok := min.OrderKey()
	if !ok {
		return out
	}
	hi, ok := max.OrderKey()
	if !ok || lo > hi {
		return out
	}

	i := sort.Search(len(ix.keys), func(i int) bool { return ix.keys[i] >= lo })
	for ; i < len(ix.keys) && ix.keys[i] <= hi; i++ {
		out.Add(ix.ids[i])
	}
	return out
}

// Len returns the number of (value, id) pairs.
func (ix *SortedIndex) Len() int { return len(ix.keys) }
